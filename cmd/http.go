package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/foomo/keel"
	"github.com/foomo/keel/healthz"
	keelhttp "github.com/foomo/keel/net/http"
	"github.com/foomo/keel/net/http/middleware"
	"github.com/foomo/keel/service"
	"github.com/foomo/roadmapserver/pkg/fetcher"
	"github.com/foomo/roadmapserver/pkg/handler"
	"github.com/foomo/roadmapserver/pkg/repo"
	"github.com/foomo/roadmapserver/pkg/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewHTTPCommand() *cobra.Command {
	v := newViper()
	service.DefaultHTTPPProfAddr = ":6060"

	cmd := &cobra.Command{
		Use:   "http <url>",
		Short: "Start http server",
		Long:  "Start the roadmap api. The argument is a http(s) url or a local file holding the index json.",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			var comps []string
			if len(args) == 0 {
				comps = cobra.AppendActiveHelp(comps, "You must specify the URL or file of the roadmap index")
			} else {
				comps = cobra.AppendActiveHelp(comps, "This command does not take any more arguments")
			}
			return comps, cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svr := keel.NewServer(
				keel.WithHTTPPrometheusService(servicePrometheusEnabledFlag(v)),
				keel.WithHTTPHealthzService(serviceHealthzEnabledFlag(v)),
				keel.WithPrometheusMeter(servicePrometheusEnabledFlag(v)),
				keel.WithGracefulPeriod(gracefulPeriodFlag(v)),
				keel.WithOTLPGRPCTracer(otelEnabledFlag(v)),
				keel.WithHTTPPProfService(servicePProfEnabledFlag(v)),
			)

			l := svr.Logger()

			historyStorage, err := openStorage(cmd.Context(), l.Named("inst.storage.history"),
				storageTypeFlag(v), historyDirFlag(v), storageBlobBucketFlag(v), storageBlobPrefixFlag(v))
			if err != nil {
				return fmt.Errorf("failed to create history storage: %w", err)
			}

			history, err := repo.NewHistory(l.Named("inst.history"),
				repo.HistoryWithStorage(historyStorage),
				repo.HistoryWithHistoryDir(historyDirFlag(v)),
				repo.HistoryWithHistoryLimit(historyLimitFlag(v)),
			)
			if err != nil {
				return fmt.Errorf("failed to create history: %w", err)
			}

			r := repo.New(l.Named("inst.repo"),
				args[0],
				history,
				repo.WithHTTPClient(
					keelhttp.NewHTTPClient(
						keelhttp.HTTPClientWithTimeout(repositoryTimeoutFlag(v)),
						keelhttp.HTTPClientWithTelemetry(),
					),
				),
				repo.WithPollInterval(pollIntervalFlag(v)),
				repo.WithPoll(pollFlag(v)),
				repo.WithRoots(rootsFlag(v)...),
			)

			cacheStorage, err := openStorage(cmd.Context(), l.Named("inst.storage.cache"),
				cacheTypeFlag(v), cacheDirFlag(v), cacheBlobBucketFlag(v), cacheBlobPrefixFlag(v))
			if err != nil {
				return fmt.Errorf("failed to create cache storage: %w", err)
			}

			f, err := fetcher.New(cmd.Context(), l.Named("inst.fetcher"),
				fetcher.WithHTTPClient(
					keelhttp.NewHTTPClient(
						keelhttp.HTTPClientWithTimeout(upstreamTimeoutFlag(v)),
						keelhttp.HTTPClientWithTelemetry(),
					),
				),
				fetcher.WithUpstreamURL(upstreamURLFlag(v)),
				fetcher.WithTimeout(upstreamTimeoutFlag(v)),
				fetcher.WithRevalidate(revalidateFlag(v)),
				fetcher.WithCacheStorage(cacheStorage),
			)
			if err != nil {
				return fmt.Errorf("failed to create fetcher: %w", err)
			}

			isLoadedHealtherFn := healthz.NewHealthzerFn(func(ctx context.Context) error {
				if !r.Loaded() {
					return errors.New("repo not loaded yet")
				}
				return nil
			})
			// start initial update and handle error
			svr.AddStartupHealthzers(isLoadedHealtherFn)
			svr.AddReadinessHealthzers(isLoadedHealtherFn)

			svr.AddClosers(
				func(ctx context.Context) error {
					return history.Close()
				},
				func(ctx context.Context) error {
					return f.Close()
				},
			)

			svr.AddServices(
				service.NewGoRoutine(l.Named("go.repo"), "repo", func(ctx context.Context, l *zap.Logger) error {
					return r.Start(ctx)
				}),
				service.NewHTTP(l.Named("svc.http"), "http", addressFlag(v),
					handler.NewHTTP(l.Named("inst.handler"), r, f, handler.WithBasePath(basePathFlag(v))),
					middleware.Telemetry(),
					middleware.Logger(),
					middleware.GZip(middleware.GZipWithLevel(gzipLevelFlag(v))),
					middleware.Recover(),
				),
			)

			svr.Run()
			return nil
		},
	}

	flags := cmd.Flags()
	addAddressFlag(flags, v)
	addBasePathFlag(flags, v)
	addPollFlag(flags, v)
	addPollIntervalFlag(flags, v)
	addHistoryDirFlag(flags, v)
	addHistoryLimitFlag(flags, v)
	addGracefulPeriodFlag(flags, v)
	addOtelEnabledFlag(flags, v)
	addServiceHealthzEnabledFlag(flags, v)
	addServicePrometheusEnabledFlag(flags, v)
	addServicePProfEnabledFlag(flags, v)
	addStorageTypeFlag(flags, v)
	addStorageBlobBucketFlag(flags, v)
	addStorageBlobPrefixFlag(flags, v)
	addCacheTypeFlag(flags, v)
	addCacheDirFlag(flags, v)
	addCacheBlobBucketFlag(flags, v)
	addCacheBlobPrefixFlag(flags, v)
	addRepositoryTimeoutFlag(flags, v)
	addUpstreamURLFlag(flags, v)
	addUpstreamTimeoutFlag(flags, v)
	addRevalidateFlag(flags, v)
	addRootsFlag(flags, v)
	addGzipLevelFlag(flags, v)

	return cmd
}

// openStorage creates a storage backend and logs which one is used
func openStorage(ctx context.Context, l *zap.Logger, storageType, dir, blobBucket, blobPrefix string) (storage.Storage, error) {
	if storage.Type(storageType) != storage.TypeBlob && (blobBucket != "" || blobPrefix != "") {
		l.Debug("blob flags are set but type is not 'blob'; blob config will be ignored",
			zap.String("type", storageType),
			zap.String("blob-bucket", blobBucket),
			zap.String("blob-prefix", blobPrefix),
		)
	}
	switch storage.Type(storageType) {
	case storage.TypeBlob:
		l.Info("using blob storage",
			zap.String("bucket", blobBucket),
			zap.String("prefix", blobPrefix),
			zap.String("provider", storage.BlobProvider(blobBucket)),
		)
	default:
		l.Info("using filesystem storage", zap.String("dir", dir))
	}
	return storage.Open(ctx, storage.Type(storageType), dir, blobBucket, blobPrefix)
}
