package config

import "time"

// Config holds runtime settings for the upload client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the file service gRPC endpoint.
//   - UploadInterval: period of the upload scheduler; one queued job per tick.
//   - OnlineCheckInterval: how often the client pings the server.
//   - AccessToken: bearer token sent as "access_token" metadata, may be empty.
//   - QueueCapacity: maximum number of waiting jobs, 0 = unbounded.
//   - JournalPath: SQLite file recording upload state transitions.
//   - AuthorID: author attached to every upload request.
type Config struct {
	ServerEndpointAddr  string
	UploadInterval      time.Duration
	OnlineCheckInterval time.Duration
	AccessToken         string
	QueueCapacity       int
	JournalPath         string
	AuthorID            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.UploadInterval = 30 * time.Second
	c.OnlineCheckInterval = 10 * time.Second
	c.JournalPath = "uploads.db"
}

// LoadConfig applies defaults, then the JSON file (if any), then flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
