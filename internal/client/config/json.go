package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/scimaterials/internal/flagx"
	"github.com/dmitrijs2005/scimaterials/internal/timex"
)

// JsonConfig is used only for decoding. Intervals go through timex.Duration
// so they may be written as "30s" or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string          `json:"server_endpoint_addr"`
	UploadInterval      *timex.Duration `json:"upload_interval"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	AccessToken         string          `json:"access_token"`
	QueueCapacity       *int            `json:"queue_capacity"`
	JournalPath         string          `json:"journal_path"`
	AuthorID            string          `json:"author_id"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
// Read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.UploadInterval != nil {
		cfg.UploadInterval = jc.UploadInterval.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.AccessToken != "" {
		cfg.AccessToken = jc.AccessToken
	}
	if jc.QueueCapacity != nil {
		cfg.QueueCapacity = *jc.QueueCapacity
	}
	if jc.JournalPath != "" {
		cfg.JournalPath = jc.JournalPath
	}
	if jc.AuthorID != "" {
		cfg.AuthorID = jc.AuthorID
	}
}
