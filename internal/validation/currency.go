package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// maxCurrencyDigits limita a digitação para que o valor em centavos caiba em int64
const maxCurrencyDigits = 15

// ErrInvalidAmount indica um valor em reais que não pode ser convertido para centavos
var ErrInvalidAmount = errors.New("valor inválido")

// FormatCurrency formata centavos como moeda brasileira: 123456 -> "R$ 1.234,56"
func FormatCurrency(cents int64) string {
	sign := ""
	u := uint64(cents)
	if cents < 0 {
		sign = "-"
		u = uint64(-(cents + 1)) + 1
	}
	reais := strconv.FormatUint(u/100, 10)
	return sign + "R$ " + groupThousands(reais) + "," + twoDigits(u%100)
}

func twoDigits(n uint64) string {
	if n < 10 {
		return "0" + strconv.FormatUint(n, 10)
	}
	return strconv.FormatUint(n, 10)
}

// groupThousands insere "." a cada três dígitos a partir da direita
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// digitsToCents interpreta a sequência de dígitos como centavos; vazio vale zero.
// Valores acima de math.MaxInt64 saturam em math.MaxInt64.
func digitsToCents(digits string) int64 {
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64
	}
	if err != nil {
		return 0
	}
	return n
}

// FormatCurrencyInput reformata o texto do campo de valor a cada tecla.
// Os dígitos são lidos como centavos: "1", "12", "123" -> R$ 0,01, R$ 0,12, R$ 1,23.
// A digitação para em maxCurrencyDigits dígitos.
func FormatCurrencyInput(text string) string {
	digits := CleanDigits(text)
	if len(digits) > maxCurrencyDigits {
		digits = digits[:maxCurrencyDigits]
	}
	return FormatCurrency(digitsToCents(digits))
}

// ParseCurrency remove a formatação e devolve o valor em centavos, em toda a faixa de int64
func ParseCurrency(text string) int64 {
	return digitsToCents(CleanDigits(text))
}

// ParseReais converte um valor decimal em reais ("1234.56" ou "1234,56") para centavos.
// Mais de duas casas decimais é rejeitado em vez de arredondado.
func ParseReais(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, ErrInvalidAmount
	}
	if cents.GreaterThan(decimal.NewFromInt(1e15)) || cents.LessThan(decimal.NewFromInt(-1e15)) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}
