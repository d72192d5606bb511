package utils

import (
    "encoding/json"
    "net/http"

    "plan-payment-api/models"
)

func SendErrorResponse(w http.ResponseWriter, status int, message string) {
    SendJSONResponse(w, status, models.APIResponse{
        Status:  "error",
        Message: message,
    })
}

func SendJSONResponse(w http.ResponseWriter, status int, response models.APIResponse) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    json.NewEncoder(w).Encode(response)
}
