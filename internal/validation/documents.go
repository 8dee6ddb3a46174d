// Package validation reúne as validações e máscaras dos campos digitados pelo usuário:
// CPF, CNPJ, telefone, CEP, valores monetários e competência.
//
// Todas as funções são puras e totais: entrada inválida resulta em false, string vazia
// ou zero, nunca em panic. Podem ser chamadas a cada tecla digitada.
package validation

// CleanDigits remove tudo que não for dígito ASCII
func CleanDigits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// allEqual indica sequências como "00000000000", que passam no cálculo ingênuo do dígito
func allEqual(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}

// IsValidCPF valida um CPF pelos dois dígitos verificadores (módulo 11)
func IsValidCPF(cpf string) bool {
	d := CleanDigits(cpf)
	if len(d) != 11 || allEqual(d) {
		return false
	}
	if cpfCheckDigit(d[:9]) != int(d[9]-'0') {
		return false
	}
	return cpfCheckDigit(d[:10]) == int(d[10]-'0')
}

// cpfCheckDigit usa pesos decrescentes a partir de len(d)+1 até 2
func cpfCheckDigit(d string) int {
	sum := 0
	weight := len(d) + 1
	for i := 0; i < len(d); i++ {
		sum += int(d[i]-'0') * weight
		weight--
	}
	digit := 11 - sum%11
	if digit >= 10 {
		return 0
	}
	return digit
}

// IsValidCNPJ valida um CNPJ pelos dois dígitos verificadores (módulo 11)
func IsValidCNPJ(cnpj string) bool {
	d := CleanDigits(cnpj)
	if len(d) != 14 || allEqual(d) {
		return false
	}
	if cnpjCheckDigit(d[:12], 5) != int(d[12]-'0') {
		return false
	}
	return cnpjCheckDigit(d[:13], 6) == int(d[13]-'0')
}

// cnpjCheckDigit decrementa o peso a cada dígito e volta para 9 depois do 2
func cnpjCheckDigit(d string, weight int) int {
	sum := 0
	for i := 0; i < len(d); i++ {
		sum += int(d[i]-'0') * weight
		if weight == 2 {
			weight = 9
		} else {
			weight--
		}
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}
