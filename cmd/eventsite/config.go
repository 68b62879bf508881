package main

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/eringen/eventsite"
	"github.com/eringen/eventsite/legacy"
)

// loadConfig reads .env, then eventsite.yaml from the working directory or
// ./config, then the environment. Keys map to variables with dots replaced
// by underscores, so admin.password is ADMIN_PASSWORD.
func loadConfig(paths ...string) (*viper.Viper, error) {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("eventsite")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.name", "Eventsite")
	v.SetDefault("site.url", "http://localhost:3000")
	v.SetDefault("site.language", "de")
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("database.path", "data/eventsite.db")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("uploads.backend", "disk")
	v.SetDefault("uploads.max_width", 1600)
	v.SetDefault("uploads.max_size", 50<<20)
	v.SetDefault("s3.region", "eu-central-1")
	v.SetDefault("stats.database_path", "data/stats.db")
	v.SetDefault("stats.retention_days", 365)

	d := legacy.DefaultConfig()
	v.SetDefault("legacy.seeds", d.Seeds)
	v.SetDefault("legacy.city_slugs", d.CitySlugs)
	v.SetDefault("legacy.denylist", d.Denylist)
	v.SetDefault("legacy.delay", d.Delay)
	v.SetDefault("legacy.timeout", d.Timeout)
	v.SetDefault("legacy.user_agent", d.UserAgent)
	v.SetDefault("legacy.output_dir", d.OutputDir)
	v.SetDefault("legacy.media_dir", d.MediaDir)
	v.SetDefault("legacy.media_url_prefix", d.MediaURLPrefix)
}

func siteConfig(v *viper.Viper) eventsite.SiteConfig {
	return eventsite.SiteConfig{
		Name:          v.GetString("site.name"),
		URL:           v.GetString("site.url"),
		Description:   v.GetString("site.description"),
		Language:      v.GetString("site.language"),
		Addr:          v.GetString("server.addr"),
		DatabasePath:  v.GetString("database.path"),
		AdminPassword: v.GetString("admin.password"),
		SessionSecret: v.GetString("session.secret"),
		CookieSecure:  v.GetBool("session.cookie_secure"),
		PostCacheTTL:  v.GetDuration("cache.ttl"),
		MaxImageWidth: v.GetInt("uploads.max_width"),
		MaxUploadSize: v.GetInt64("uploads.max_size"),
		UploadBackend: v.GetString("uploads.backend"),

		StatsDatabasePath:  v.GetString("stats.database_path"),
		StatsRetentionDays: v.GetInt("stats.retention_days"),

		S3: eventsite.S3Config{
			Bucket:    v.GetString("s3.bucket"),
			Region:    v.GetString("s3.region"),
			Endpoint:  v.GetString("s3.endpoint"),
			AccessKey: v.GetString("s3.access_key"),
			SecretKey: v.GetString("s3.secret_key"),
			PublicURL: v.GetString("s3.public_url"),
			PathStyle: v.GetBool("s3.path_style"),
		},
	}
}

func legacyConfig(v *viper.Viper) legacy.Config {
	return legacy.Config{
		Seeds:          stringList(v, "legacy.seeds"),
		CitySlugs:      stringList(v, "legacy.city_slugs"),
		Denylist:       stringList(v, "legacy.denylist"),
		Delay:          v.GetDuration("legacy.delay"),
		Timeout:        v.GetDuration("legacy.timeout"),
		UserAgent:      v.GetString("legacy.user_agent"),
		OutputDir:      v.GetString("legacy.output_dir"),
		MediaDir:       v.GetString("legacy.media_dir"),
		MediaURLPrefix: v.GetString("legacy.media_url_prefix"),
	}
}

// stringList reads a list given in YAML or as a comma-separated variable,
// e.g. LEGACY_SEEDS=https://a.de/,https://b.de/.
func stringList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
