package validation

import "strings"

// mask aplica separadores progressivamente: cada separador só entra
// quando o grupo seguinte já tem pelo menos um dígito
func mask(digits string, groups []int, seps []string) string {
	var b strings.Builder
	pos := 0
	for i, size := range groups {
		if pos >= len(digits) {
			break
		}
		end := pos + size
		if end > len(digits) {
			end = len(digits)
		}
		if i > 0 {
			b.WriteString(seps[i-1])
		}
		b.WriteString(digits[pos:end])
		pos = end
	}
	return b.String()
}

// FormatCPF formata para "000.000.000-00", aceitando entrada parcial
func FormatCPF(raw string) string {
	return mask(CleanDigits(raw), []int{3, 3, 3, 2}, []string{".", ".", "-"})
}

// FormatCNPJ formata para "00.000.000/0000-00", aceitando entrada parcial
func FormatCNPJ(raw string) string {
	return mask(CleanDigits(raw), []int{2, 3, 3, 4, 2}, []string{".", ".", "/", "-"})
}

// FormatDocument escolhe a máscara de CPF ou CNPJ pela quantidade de dígitos
func FormatDocument(raw string) string {
	if len(CleanDigits(raw)) > 11 {
		return FormatCNPJ(raw)
	}
	return FormatCPF(raw)
}

// FormatCEP formata para "00000-000", aceitando entrada parcial
func FormatCEP(raw string) string {
	return mask(CleanDigits(raw), []int{5, 3}, []string{"-"})
}

// FormatPhone formata para "(00) 00000-0000" (celular) ou "(00) 0000-0000" (fixo).
// Com menos dígitos devolve o prefixo já montado, ex: "(71", "(71) 9902".
func FormatPhone(raw string) string {
	d := CleanDigits(raw)
	switch {
	case len(d) == 0:
		return ""
	case len(d) <= 2:
		return "(" + d
	case len(d) <= 6:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) <= 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:11]
	}
}

// ValidateCEP verifica apenas o formato: 8 dígitos
func ValidateCEP(raw string) bool {
	return len(CleanDigits(raw)) == 8
}

// ValidatePhone aceita vazio (telefone é opcional) ou 10/11 dígitos
func ValidatePhone(raw string) bool {
	if raw == "" {
		return true
	}
	n := len(CleanDigits(raw))
	return n == 10 || n == 11
}

// ValidateUF verifica a sigla de estado: exatamente duas letras
func ValidateUF(raw string) bool {
	uf := strings.TrimSpace(raw)
	if len(uf) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		c := uf[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
