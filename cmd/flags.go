package cmd

import (
	"time"

	"github.com/foomo/roadmapserver/pkg/fetcher"
	"github.com/foomo/roadmapserver/pkg/handler"
	"github.com/foomo/roadmapserver/roadmap"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func logLevelFlag(v *viper.Viper) string {
	return v.GetString("log.level")
}

func addLogLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-level", "info", "log level")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

func logFormatFlag(v *viper.Viper) string {
	return v.GetString("log.format")
}

func addLogFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-format", "json", "log format")
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindEnv("log.format", "LOG_FORMAT")
}

func addressFlag(v *viper.Viper) string {
	return v.GetString("address")
}

func addAddressFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("address", ":8080", "Address to bind to (host:port)")
	_ = v.BindPFlag("address", flags.Lookup("address"))
	_ = v.BindEnv("address", "ROADMAP_SERVER_ADDRESS")
}

func basePathFlag(v *viper.Viper) string {
	return v.GetString("base_path")
}

func addBasePathFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("base-path", handler.DefaultBasePath, "Base path to export the api on")
	_ = v.BindPFlag("base_path", flags.Lookup("base-path"))
	_ = v.BindEnv("base_path", "ROADMAP_SERVER_BASE_PATH")
}

func pollFlag(v *viper.Viper) bool {
	return v.GetBool("poll.enabled")
}

func addPollFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("poll", false, "If true, the index will be reloaded periodically")
	_ = v.BindPFlag("poll.enabled", flags.Lookup("poll"))
	_ = v.BindEnv("poll.enabled", "ROADMAP_SERVER_POLL")
}

func pollIntervalFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("poll.interval")
}

func addPollIntervalFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("poll-interval", time.Minute, "Specifies the poll interval")
	_ = v.BindPFlag("poll.interval", flags.Lookup("poll-interval"))
	_ = v.BindEnv("poll.interval", "ROADMAP_SERVER_POLL_INTERVAL")
}

func historyDirFlag(v *viper.Viper) string {
	return v.GetString("history.dir")
}

func addHistoryDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("history-dir", "/var/lib/roadmapserver", "Where to keep index snapshots")
	_ = v.BindPFlag("history.dir", flags.Lookup("history-dir"))
	_ = v.BindEnv("history.dir", "ROADMAP_SERVER_HISTORY_DIR")
}

func historyLimitFlag(v *viper.Viper) int {
	return v.GetInt("history.limit")
}

func addHistoryLimitFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("history-limit", 2, "Number of history records to keep")
	_ = v.BindPFlag("history.limit", flags.Lookup("history-limit"))
	_ = v.BindEnv("history.limit", "ROADMAP_SERVER_HISTORY_LIMIT")
}

func storageTypeFlag(v *viper.Viper) string {
	return v.GetString("storage.type")
}

func addStorageTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-type", "filesystem", "History storage backend: filesystem or blob")
	_ = v.BindPFlag("storage.type", flags.Lookup("storage-type"))
	_ = v.BindEnv("storage.type", "ROADMAP_SERVER_STORAGE_TYPE")
}

func storageBlobBucketFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.bucket")
}

func addStorageBlobBucketFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-bucket", "", "History bucket url (gs://, s3://, azblob://, mem://)")
	_ = v.BindPFlag("storage.blob.bucket", flags.Lookup("storage-blob-bucket"))
	_ = v.BindEnv("storage.blob.bucket", "ROADMAP_SERVER_STORAGE_BLOB_BUCKET")
}

func storageBlobPrefixFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.prefix")
}

func addStorageBlobPrefixFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-prefix", "", "Key prefix within the history bucket")
	_ = v.BindPFlag("storage.blob.prefix", flags.Lookup("storage-blob-prefix"))
	_ = v.BindEnv("storage.blob.prefix", "ROADMAP_SERVER_STORAGE_BLOB_PREFIX")
}

func cacheTypeFlag(v *viper.Viper) string {
	return v.GetString("cache.type")
}

func addCacheTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("cache-type", "blob", "Node content cache backend: filesystem or blob")
	_ = v.BindPFlag("cache.type", flags.Lookup("cache-type"))
	_ = v.BindEnv("cache.type", "ROADMAP_SERVER_CACHE_TYPE")
}

func cacheDirFlag(v *viper.Viper) string {
	return v.GetString("cache.dir")
}

func addCacheDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("cache-dir", "/var/cache/roadmapserver", "Node content cache directory of the filesystem backend")
	_ = v.BindPFlag("cache.dir", flags.Lookup("cache-dir"))
	_ = v.BindEnv("cache.dir", "ROADMAP_SERVER_CACHE_DIR")
}

func cacheBlobBucketFlag(v *viper.Viper) string {
	return v.GetString("cache.blob.bucket")
}

func addCacheBlobBucketFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("cache-blob-bucket", "mem://", "Node content cache bucket url (gs://, s3://, azblob://, mem://)")
	_ = v.BindPFlag("cache.blob.bucket", flags.Lookup("cache-blob-bucket"))
	_ = v.BindEnv("cache.blob.bucket", "ROADMAP_SERVER_CACHE_BLOB_BUCKET")
}

func cacheBlobPrefixFlag(v *viper.Viper) string {
	return v.GetString("cache.blob.prefix")
}

func addCacheBlobPrefixFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("cache-blob-prefix", "node-content", "Key prefix within the cache bucket")
	_ = v.BindPFlag("cache.blob.prefix", flags.Lookup("cache-blob-prefix"))
	_ = v.BindEnv("cache.blob.prefix", "ROADMAP_SERVER_CACHE_BLOB_PREFIX")
}

func repositoryTimeoutFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("repository.timeout")
}

func addRepositoryTimeoutFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("repository-timeout", 30*time.Second, "Timeout for loading the index")
	_ = v.BindPFlag("repository.timeout", flags.Lookup("repository-timeout"))
	_ = v.BindEnv("repository.timeout", "ROADMAP_SERVER_REPOSITORY_TIMEOUT")
}

func upstreamURLFlag(v *viper.Viper) string {
	return v.GetString("upstream.url")
}

func addUpstreamURLFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("upstream-url", fetcher.DefaultUpstreamURL, "Base url of the roadmap content service")
	_ = v.BindPFlag("upstream.url", flags.Lookup("upstream-url"))
	_ = v.BindEnv("upstream.url", "ROADMAP_SERVER_UPSTREAM_URL")
}

func upstreamTimeoutFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("upstream.timeout")
}

func addUpstreamTimeoutFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("upstream-timeout", fetcher.DefaultTimeout, "Timeout for a single node content request")
	_ = v.BindPFlag("upstream.timeout", flags.Lookup("upstream-timeout"))
	_ = v.BindEnv("upstream.timeout", "ROADMAP_SERVER_UPSTREAM_TIMEOUT")
}

func revalidateFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("upstream.revalidate")
}

func addRevalidateFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("revalidate", fetcher.DefaultRevalidate, "Duration node content is cached, 0 disables the cache")
	_ = v.BindPFlag("upstream.revalidate", flags.Lookup("revalidate"))
	_ = v.BindEnv("upstream.revalidate", "ROADMAP_SERVER_REVALIDATE")
}

func rootsFlag(v *viper.Viper) []string {
	return v.GetStringSlice("roots")
}

func addRootsFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.StringSlice("roots", nil, "Root labels to expose, all if empty")
	_ = v.BindPFlag("roots", flags.Lookup("roots"))
	_ = v.BindEnv("roots", "ROADMAP_SERVER_ROOTS")
}

func rootFlag(v *viper.Viper) string {
	return v.GetString("root")
}

func addRootFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("root", roadmap.DefaultRootLabel, "Root label of the roadmap")
	_ = v.BindPFlag("root", flags.Lookup("root"))
}

func jsonFlag(v *viper.Viper) bool {
	return v.GetBool("json")
}

func addJSONFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("json", false, "Print json")
	_ = v.BindPFlag("json", flags.Lookup("json"))
}

func gzipLevelFlag(v *viper.Viper) int {
	return v.GetInt("gzip.level")
}

func addGzipLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("gzip-level", -1, "Gzip compression level of responses, -1 is the default level")
	_ = v.BindPFlag("gzip.level", flags.Lookup("gzip-level"))
	_ = v.BindEnv("gzip.level", "ROADMAP_SERVER_GZIP_LEVEL")
}

func gracefulPeriodFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("graceful_period")
}

func addGracefulPeriodFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("graceful-period", 0, "Graceful period before shutting down")
	_ = v.BindPFlag("graceful_period", flags.Lookup("graceful-period"))
	_ = v.BindEnv("graceful_period", "ROADMAP_SERVER_GRACEFUL_PERIOD")
}

func serviceHealthzEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.healthz.enabled")
}

func addServiceHealthzEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-healthz-enabled", false, "Enable healthz service")
	_ = v.BindPFlag("service.healthz.enabled", flags.Lookup("service-healthz-enabled"))
}

func servicePrometheusEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.prometheus.enabled")
}

func addServicePrometheusEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-prometheus-enabled", false, "Enable prometheus service")
	_ = v.BindPFlag("service.prometheus.enabled", flags.Lookup("service-prometheus-enabled"))
}

func servicePProfEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.pprof.enabled")
}

func addServicePProfEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-pprof-enabled", false, "Enable pprof service")
	_ = v.BindPFlag("service.pprof.enabled", flags.Lookup("service-pprof-enabled"))
}

func otelEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("otel.enabled")
}

func addOtelEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("otel-enabled", false, "Enable otel service")
	_ = v.BindPFlag("otel.enabled", flags.Lookup("otel-enabled"))
	_ = v.BindEnv("otel.enabled", "OTEL_ENABLED")
}

func htmlFlag(v *viper.Viper) bool {
	return v.GetBool("html")
}

func addHTMLFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("html", false, "Print html")
	_ = v.BindPFlag("html", flags.Lookup("html"))
}
