// Package lotnumber infiere el siguiente número de lote a partir de los
// números anteriores del producto. Es una sugerencia de mejor esfuerzo para el
// llamador, no una garantía de unicidad: la unicidad real la impone la
// constraint (product_id, lot_number) en base de datos.
package lotnumber

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultPrefix se usa cuando no hay lotes previos o ningún patrón reconocido.
const DefaultPrefix = "LOTE"

var (
	// prefijo + sufijo numérico: "L-001", "LOTE2024-07", "A12" → incrementa el sufijo
	reNumericSuffix = regexp.MustCompile(`^(.*?)(\d+)$`)
	// puramente numérico: "17" → "18"
	reAllDigits = regexp.MustCompile(`^\d+$`)
)

// SuggestNext propone el siguiente número de lote dado el historial del
// producto. Toma el lote con el mayor sufijo numérico y lo incrementa
// conservando el prefijo y el relleno de ceros. Con historial sin patrón
// reconocible (o vacío) cae al secuencial "LOTE-<n+1>" con n = lotes previos.
func SuggestNext(existing []string) string {
	bestSuffix := int64(-1)
	bestPrefix := ""
	bestWidth := 0

	for _, num := range existing {
		num = strings.TrimSpace(num)
		if num == "" {
			continue
		}
		var prefix, digits string
		if reAllDigits.MatchString(num) {
			prefix, digits = "", num
		} else if m := reNumericSuffix.FindStringSubmatch(num); m != nil {
			prefix, digits = m[1], m[2]
		} else {
			continue
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		if n > bestSuffix {
			bestSuffix = n
			bestPrefix = prefix
			bestWidth = len(digits)
		}
	}

	if bestSuffix < 0 {
		return fmt.Sprintf("%s-%d", DefaultPrefix, len(existing)+1)
	}
	next := strconv.FormatInt(bestSuffix+1, 10)
	if pad := bestWidth - len(next); pad > 0 {
		next = strings.Repeat("0", pad) + next
	}
	return bestPrefix + next
}
