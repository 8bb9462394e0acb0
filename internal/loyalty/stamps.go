// Package loyalty содержит правила начисления штампов и константы
// программы лояльности.
package loyalty

import "math"

const (
	// StampUnitValue сумма покупки, дающая один штамп
	StampUnitValue = 150.0

	// CouponThreshold количество штампов для выдачи купона
	CouponThreshold = 10

	// CouponDiscountRate скидка купона, выданного по порогу
	CouponDiscountRate = 0.15

	// CouponValidityDays срок действия купона в календарных днях
	CouponValidityDays = 30
)

// StampsFor возвращает количество штампов за покупку: floor(amount / 150).
// Для сумм меньше StampUnitValue, включая нулевые и отрицательные,
// возвращается 0.
func StampsFor(amount float64) int {
	if amount < StampUnitValue {
		return 0
	}
	return int(math.Floor(amount / StampUnitValue))
}
