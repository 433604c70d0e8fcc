package handlers

import (
	"collection-route-service/internal/api/dto"
	"collection-route-service/internal/domain"
	"collection-route-service/internal/ports"
	"net/http"
)

// ContainerHandler exposes read-only container registry endpoints.
type ContainerHandler struct {
	Repo             ports.ContainerRepository
	DefaultThreshold float64
}

func (h *ContainerHandler) NeedingCollection(w http.ResponseWriter, r *http.Request) {
	threshold, ok := queryFloat(w, r, "threshold", h.DefaultThreshold)
	if !ok {
		return
	}
	if threshold < 0 || threshold > 100 {
		writeError(w, r, http.StatusBadRequest, "threshold must be between 0 and 100")
		return
	}

	containers, err := h.Repo.ListNeedingCollection(r.Context(), threshold)
	if err != nil {
		writeServiceError(w, r, "list containers", err)
		return
	}

	res := dto.ListContainersResponse{
		Threshold:  threshold,
		Containers: make([]dto.ContainerResponse, 0, len(containers)),
	}
	for _, c := range containers {
		res.Containers = append(res.Containers, toContainerResponse(c))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toContainerResponse(c domain.Container) dto.ContainerResponse {
	return dto.ContainerResponse{
		ID:         c.ID,
		UID:        c.UID,
		Name:       c.Name,
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
		FillLevel:  c.FillLevel,
		FillStatus: string(domain.ClassifyFill(c.FillLevel)),
		Priority:   string(domain.CollectionPriority(c.FillLevel)),
	}
}
