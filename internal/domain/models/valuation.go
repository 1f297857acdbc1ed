package models

import "time"

const (
	ModelGraham = "graham"
	ModelGordon = "gordon_growth"
	ModelDCF    = "dcf"
	ModelAltman = "altman_z"
)

// ValuationResult is the output of a single model. Value is zero whenever
// Applicable is false.
type ValuationResult struct {
	Model      string  `json:"model"`
	Value      float64 `json:"value"`
	Applicable bool    `json:"applicable"`
	Reason     string  `json:"reason,omitempty"`
}

// Assumptions are the user-chosen scalars shared by the price-target models.
type Assumptions struct {
	DiscountRate       float64 `json:"discount_rate" yaml:"discount_rate" default:"0.10" validate:"gt=-1,lt=1"`
	GrowthRate         float64 `json:"growth_rate" yaml:"growth_rate" default:"0.05" validate:"gt=-1,lt=1"`
	DividendGrowthRate float64 `json:"dividend_growth_rate" yaml:"dividend_growth_rate" default:"0.03" validate:"gt=-1,lt=1"`
	ExitMultiple       float64 `json:"exit_multiple" yaml:"exit_multiple" default:"25" validate:"gt=0"`
	Years              int     `json:"years" yaml:"years" default:"5" validate:"gte=1,lte=30"`
}

// AltmanZone buckets an Altman Z score.
type AltmanZone string

const (
	ZoneSafe     AltmanZone = "safe"
	ZoneGrey     AltmanZone = "grey"
	ZoneDistress AltmanZone = "distress"
)

type AltmanScore struct {
	Score      float64    `json:"score"`
	Zone       AltmanZone `json:"zone,omitempty"`
	Applicable bool       `json:"applicable"`
	Reason     string     `json:"reason,omitempty"`
}

// Valuation aggregates every model for one symbol.
type Valuation struct {
	Symbol           string            `json:"symbol"`
	Price            float64           `json:"price"`
	Assumptions      Assumptions       `json:"assumptions"`
	Models           []ValuationResult `json:"models"`
	Consensus        float64           `json:"consensus"`
	ConsensusDefined bool              `json:"consensus_defined"`
	Upside           float64           `json:"upside"`
	UpsideDefined    bool              `json:"upside_defined"`
	Altman           AltmanScore       `json:"altman"`
	ComputedAt       time.Time         `json:"computed_at"`
}
