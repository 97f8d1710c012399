package config

import "os"

// R2Config points at an S3-compatible bucket (Cloudflare R2) that keeps a
// copy of every export. Credentials come from the environment only.
type R2Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Prefix    string `mapstructure:"prefix"`
}

func (r *R2Config) applyEnv() {
	if v := os.Getenv("R2_ENDPOINT"); v != "" {
		r.Endpoint = v
	}
	if v := os.Getenv("R2_ACCESS_KEY"); v != "" {
		r.AccessKey = v
	}
	if v := os.Getenv("R2_SECRET_KEY"); v != "" {
		r.SecretKey = v
	}
	if v := os.Getenv("R2_BUCKET"); v != "" {
		r.Bucket = v
	}
}

// Usable reports whether archiving is switched on and fully configured
func (r R2Config) Usable() bool {
	return r.Enabled && r.Endpoint != "" && r.AccessKey != "" && r.SecretKey != "" && r.Bucket != ""
}
