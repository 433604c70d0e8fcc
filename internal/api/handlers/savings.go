package handlers

import (
	"collection-route-service/internal/api/dto"
	"collection-route-service/internal/domain"
	"collection-route-service/internal/ports"
	"net/http"
)

// SavingsHandler exposes aggregated savings reports.
type SavingsHandler struct {
	Routes ports.RouteReader
}

func (h *SavingsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Routes.SumSavings(r.Context())
	if err != nil {
		writeServiceError(w, r, "sum savings", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toTotalsResponse(totals))
}

func (h *SavingsHandler) Periods(w http.ResponseWriter, r *http.Request) {
	g := domain.Granularity(r.URL.Query().Get("granularity"))
	if g == "" {
		g = domain.GranularityMonth
	}
	if !g.Valid() {
		writeError(w, r, http.StatusBadRequest, "granularity must be one of day, month, year")
		return
	}

	periods, err := h.Routes.SumSavingsByPeriod(r.Context(), g)
	if err != nil {
		writeServiceError(w, r, "sum savings by period", err)
		return
	}

	res := dto.ListPeriodSavingsResponse{
		Granularity: string(g),
		Periods:     make([]dto.PeriodSavingsResponse, 0, len(periods)),
	}
	for _, p := range periods {
		res.Periods = append(res.Periods, dto.PeriodSavingsResponse{
			Period:                p.Period,
			SavingsTotalsResponse: toTotalsResponse(p.SavingsTotals),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toTotalsResponse(t domain.SavingsTotals) dto.SavingsTotalsResponse {
	return dto.SavingsTotalsResponse{
		Routes:               t.Routes,
		DistanceKm:           t.DistanceKm,
		FuelSavedL:           t.FuelSavedL,
		CO2SavedKg:           t.CO2SavedKg,
		CostSaved:            t.CostSaved,
		TimeSavedMin:         t.TimeSavedMin,
		AvgEfficiencyGainPct: t.EfficiencyGainPct,
	}
}
