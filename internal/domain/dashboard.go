package domain

import "time"

// DashboardOverview представляет сводную статистику для админ-панели
type DashboardOverview struct {
	TotalClients   int `json:"total_clients"`
	TotalPurchases int `json:"total_purchases"`
	TotalCoupons   int `json:"total_coupons"`
	ActiveCoupons  int `json:"active_coupons"`
	PurchasesToday int `json:"purchases_today"`
}

// WeeklyCouponBucket представляет скользящее 7-дневное окно выдачи купонов
type WeeklyCouponBucket struct {
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`
	Label     string    `json:"label"`
	Coupons   int       `json:"coupons"`
}

// MonthlyCouponBucket представляет календарный месяц выдачи купонов
type MonthlyCouponBucket struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Label   string     `json:"label"`
	Coupons int        `json:"coupons"`
}
