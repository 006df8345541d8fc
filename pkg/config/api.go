package config

// APIConfig groups the HTTP server's infrastructure settings: a plain
// request/response API with no dashboard and no websockets.
type APIConfig struct {
	ListenAddr     string   `yaml:"listen_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DefaultAPIConfig returns the built-in API defaults.
func DefaultAPIConfig() *APIConfig {
	return &APIConfig{
		ListenAddr:     ":8080",
		AllowedOrigins: []string{"*"},
	}
}
