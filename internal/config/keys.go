package config

// keySpec ties a config key to its environment override and its value in an
// effective Config. The table drives `config show` and the key listing in
// help text; viper owns the actual resolution.
type keySpec struct {
	key     string
	env     string
	secret  bool
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.addr", env: "FAKENEWS_SERVER_ADDR",
		extract: func(cfg Config) any { return cfg.Server.Addr },
	},
	{
		key: "server.base_url", env: "FAKENEWS_SERVER_BASE_URL",
		extract: func(cfg Config) any { return cfg.Server.BaseURL },
	},
	{
		key: "server.api_token", env: "FAKENEWS_SERVER_API_TOKEN",
		secret:  true,
		extract: func(cfg Config) any { return cfg.Server.APIToken },
	},
	{
		key: "model.dir", env: "FAKENEWS_MODEL_DIR",
		extract: func(cfg Config) any { return cfg.Model.Dir },
	},
	{
		key: "corrections.path", env: "FAKENEWS_CORRECTIONS_PATH",
		extract: func(cfg Config) any { return cfg.Corrections.Path },
	},
	{
		key: "session.ttl", env: "FAKENEWS_SESSION_TTL",
		extract: func(cfg Config) any { return cfg.Session.TTL },
	},
	{
		key: "session.max_records", env: "FAKENEWS_SESSION_MAX_RECORDS",
		extract: func(cfg Config) any { return cfg.Session.MaxRecords },
	},
	{
		key: "rate.rps", env: "FAKENEWS_RATE_RPS",
		extract: func(cfg Config) any { return cfg.Rate.RPS },
	},
	{
		key: "rate.burst", env: "FAKENEWS_RATE_BURST",
		extract: func(cfg Config) any { return cfg.Rate.Burst },
	},
	{
		key: "log.level", env: "FAKENEWS_LOG_LEVEL",
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}
