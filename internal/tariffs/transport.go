package tariffs

import "simcoe_portal/internal/quotes/domain"

// SettingsRequest creates or replaces the tariff row for one service
// type. Unit services use the setup/per-unit pair; wood powerwashing
// uses the per-measurement minute rates instead.
type SettingsRequest struct {
	ServiceType string `json:"serviceType" validate:"required"`

	SetupMinutes     float64 `json:"setupMinutes" validate:"gte=0"`
	PerUnitMinutes   float64 `json:"perUnitMinutes" validate:"gte=0"`
	HourlyCrewCharge float64 `json:"hourlyCrewCharge" validate:"gte=0"`

	AreaMinutes     float64 `json:"areaMinutes" validate:"gte=0"`
	StairsMinutes   float64 `json:"stairsMinutes" validate:"gte=0"`
	PostsMinutes    float64 `json:"postsMinutes" validate:"gte=0"`
	RailingMinutes  float64 `json:"railingMinutes" validate:"gte=0"`
	SpindlesMinutes float64 `json:"spindlesMinutes" validate:"gte=0"`
}

func (r SettingsRequest) toDomain() domain.QuoteSettings {
	return domain.QuoteSettings{
		ServiceType:      domain.ServiceType(r.ServiceType),
		SetupMinutes:     r.SetupMinutes,
		PerUnitMinutes:   r.PerUnitMinutes,
		HourlyCrewCharge: r.HourlyCrewCharge,
		AreaMinutes:      r.AreaMinutes,
		StairsMinutes:    r.StairsMinutes,
		PostsMinutes:     r.PostsMinutes,
		RailingMinutes:   r.RailingMinutes,
		SpindlesMinutes:  r.SpindlesMinutes,
	}
}
