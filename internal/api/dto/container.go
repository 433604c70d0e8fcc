package dto

type ContainerResponse struct {
	ID         int     `json:"id"`
	UID        string  `json:"uid"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	FillLevel  float64 `json:"fill_level"`
	FillStatus string  `json:"fill_status"`
	Priority   string  `json:"priority"`
}

type ListContainersResponse struct {
	Threshold  float64             `json:"threshold"`
	Containers []ContainerResponse `json:"containers"`
}
