package models

// ConfigurationRoute tells the host where the provider's configure screen lives.
type ConfigurationRoute struct {
	ActionName     string            `json:"action_name"`
	ControllerName string            `json:"controller_name"`
	RouteValues    map[string]string `json:"route_values"`
	Configurable   bool              `json:"configurable"`
}
