package ingest

// Tariff derives the prices paid and received per kWh from the spot price.
//
// Import = spot incl. VAT + (GridFeeFixed + GridFeeSpotFactor*spot + EnergyTax) * (1 + FeeVATRate)
// Export = ExportSpotFactor * spot + ExportRemuneration
//
// where spot in the export formula includes VAT unless ExportExcludesVAT is
// set. The zero Tariff buys and sells at the spot price including VAT.
type Tariff struct {
	GridFeeFixed      float64 `json:"grid_fee_fixed"`
	GridFeeSpotFactor float64 `json:"grid_fee_spot_factor"`
	EnergyTax         float64 `json:"energy_tax"`
	FeeVATRate        float64 `json:"fee_vat_rate"`
	// ExportSpotFactor scales the spot price paid for exports. Unset means 1.
	ExportSpotFactor   *float64 `json:"export_spot_factor"`
	ExportRemuneration float64  `json:"export_remuneration"`
	ExportExcludesVAT  bool     `json:"export_excludes_vat"`
}

// Import returns the price of one imported kWh.
func (t Tariff) Import(spot, vat float64) float64 {
	fees := t.GridFeeFixed + t.GridFeeSpotFactor*spot + t.EnergyTax
	return spot + vat + fees*(1+t.FeeVATRate)
}

// Export returns the remuneration of one exported kWh.
func (t Tariff) Export(spot, vat float64) float64 {
	factor := 1.0
	if t.ExportSpotFactor != nil {
		factor = *t.ExportSpotFactor
	}
	base := spot + vat
	if t.ExportExcludesVAT {
		base = spot
	}
	return factor*base + t.ExportRemuneration
}
