package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/ageguard/internal/flagx"
	"github.com/dmitrijs2005/ageguard/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration so both "168h" and integer nanoseconds are accepted.
// Absent keys leave the current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP     *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC     *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN          *string         `json:"database_dsn"`
	SecretKey            *string         `json:"secret_key"`
	Timezone             *string         `json:"timezone"`
	ConsentTokenValidity *timex.Duration `json:"consent_token_validity"`
	BreakSuggestion      *timex.Duration `json:"break_suggestion"`
	ConsentLinkBaseURL   *string         `json:"consent_link_base_url"`
	SMTPAddr             *string         `json:"smtp_addr"`
	SMTPUser             *string         `json:"smtp_user"`
	SMTPPassword         *string         `json:"smtp_password"`
	MailFrom             *string         `json:"mail_from"`
	S3RootUser           *string         `json:"s3_root_user"`
	S3RootPassword       *string         `json:"s3_root_password"`
	S3Bucket             *string         `json:"s3_bucket"`
	S3Region             *string         `json:"s3_region"`
	S3BaseEndpoint       *string         `json:"s3_base_endpoint"`
	LogLevel             *string         `json:"log_level"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// $AGEGUARD_CONFIG) onto config. No file means no changes. An unreadable
// file or invalid JSON panics: the server must not start half-configured.
func parseJson(config *Config) {
	path := flagx.ConfigFilePath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Timezone, c.Timezone)
	if c.ConsentTokenValidity != nil {
		config.ConsentTokenValidity = c.ConsentTokenValidity.Duration
	}
	if c.BreakSuggestion != nil {
		config.BreakSuggestion = c.BreakSuggestion.Duration
	}
	setString(&config.ConsentLinkBaseURL, c.ConsentLinkBaseURL)
	setString(&config.SMTPAddr, c.SMTPAddr)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
