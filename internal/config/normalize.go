package config

import "strings"

func normalize(cfg *AppConfig) {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.Timezone = strings.TrimSpace(cfg.Timezone)
	cfg.Paths.Logs = strings.TrimSpace(cfg.Paths.Logs)

	db := &cfg.Database
	db.DSN = strings.TrimSpace(db.DSN)
	db.Host = strings.TrimSpace(db.Host)
	db.User = strings.TrimSpace(db.User)
	db.Name = strings.TrimSpace(db.Name)
	db.Charset = strings.TrimSpace(db.Charset)
	db.Params = trimParams(db.Params)
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Charset == "" {
		db.Charset = defaultDBCharset
	}

	rc := &cfg.Redis
	rc.URL = strings.TrimSpace(rc.URL)
	if rc.URL != "" && !strings.Contains(rc.URL, "://") {
		rc.URL = "redis://" + rc.URL
	}
	rc.Host = strings.TrimSpace(rc.Host)
	if rc.Host == "" {
		rc.Host = defaultRedisHost
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	cfg.AllowedOrigins = origins

	for i := range cfg.AI.Providers {
		p := &cfg.AI.Providers[i]
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		p.Type = strings.TrimSpace(p.Type)
		p.APIKey = strings.TrimSpace(p.APIKey)
		p.Endpoint = strings.TrimSpace(p.Endpoint)
		p.DefaultModel = strings.TrimSpace(p.DefaultModel)
		if p.ID == "" {
			p.ID = p.Name
		}
	}
	if m := cfg.AI.SummaryModel; m != nil {
		m.ProviderID = strings.TrimSpace(m.ProviderID)
		m.Model = strings.TrimSpace(m.Model)
	}
}

// trimParams drops params whose key or value is blank.
func trimParams(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
