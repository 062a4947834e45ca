package models

import "time"

// BillingPlanMapping translates a provider price reference into a CopyFox plan id.
// Lookups try the exact interval first, then BillingIntervalUnknown.
type BillingPlanMapping struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Provider        string    `gorm:"type:varchar(20);not null;index:ux_billing_plan_mappings_ref,unique,priority:1" json:"provider"`
	ProviderPlanRef string    `gorm:"type:varchar(191);not null;index:ux_billing_plan_mappings_ref,unique,priority:2" json:"provider_plan_ref"`
	BillingInterval string    `gorm:"type:varchar(16);not null;default:'unknown';index:ux_billing_plan_mappings_ref,unique,priority:3" json:"billing_interval"`
	InternalPlan    string    `gorm:"type:varchar(50);not null;default:'free';index" json:"internal_plan"`
	IsActive        bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PlanMappingKey identifies a mapping by its unique (provider, ref, interval) triple.
func PlanMappingKey(provider, ref, interval string) string {
	return provider + "|" + ref + "|" + interval
}

// Key returns the PlanMappingKey of m.
func (m BillingPlanMapping) Key() string {
	return PlanMappingKey(m.Provider, m.ProviderPlanRef, m.BillingInterval)
}
