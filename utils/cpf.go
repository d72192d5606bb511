package utils

import "strings"

const cpfLength = 11

// RemoveCPFPunctuation drops everything that is not a digit, so both
// "529.982.247-25" and "52998224725" normalize to the same value.
func RemoveCPFPunctuation(cpf string) string {
    var b strings.Builder
    b.Grow(len(cpf))
    for _, r := range cpf {
        if r >= '0' && r <= '9' {
            b.WriteRune(r)
        }
    }
    return b.String()
}

// IsValidCPF checks the two mod-11 check digits of a CPF. Punctuation is
// stripped first.
func IsValidCPF(cpf string) bool {
    digits := RemoveCPFPunctuation(cpf)
    if len(digits) != cpfLength {
        return false
    }

    repeated := true
    for i := 1; i < cpfLength; i++ {
        if digits[i] != digits[0] {
            repeated = false
            break
        }
    }
    if repeated {
        return false
    }

    // primeiro dígito usa pesos 10..2, o segundo 11..2
    for pass := 0; pass < 2; pass++ {
        length := 9 + pass
        if cpfCheckDigit(digits[:length], length+1) != int(digits[length]-'0') {
            return false
        }
    }
    return true
}

func cpfCheckDigit(digits string, startWeight int) int {
    sum := 0
    for i, r := range digits {
        sum += int(r-'0') * (startWeight - i)
    }
    remainder := sum % 11
    if remainder < 2 {
        return 0
    }
    return 11 - remainder
}
