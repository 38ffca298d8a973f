package main

import (
	"context"
	"fmt"

	firebaseapp "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"github.com/ironsheep/avatar-tools-mcp/internal/cache"
	"github.com/ironsheep/avatar-tools-mcp/internal/config"
	"github.com/ironsheep/avatar-tools-mcp/internal/firebase"
	"github.com/ironsheep/avatar-tools-mcp/internal/imaging"
	"github.com/ironsheep/avatar-tools-mcp/internal/profile"
	"github.com/ironsheep/avatar-tools-mcp/internal/storage"
)

type deps struct {
	loader   *imaging.Loader
	cropper  *imaging.Cropper
	profiles *profile.Service
	closers  []func() error
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// wire builds the imaging pipeline and the profile backends cfg selects.
func wire(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*deps, error) {
	d := &deps{}

	blobs := imaging.NewBlobRegistry()
	loaderOpts := []imaging.LoaderOption{
		imaging.WithFetchTimeout(cfg.Crop.FetchTimeout),
		imaging.WithMaxSourceBytes(cfg.Crop.MaxSourceBytes),
		imaging.WithDecodeLimits(cfg.Crop.MaxDimension, cfg.Crop.MaxSurfacePixels),
	}
	if cfg.Crop.CacheSources {
		loaderOpts = append(loaderOpts, imaging.WithCache(imaging.NewImageCache(cfg.Crop.CacheEntries)))
	}
	d.loader = imaging.NewLoader(blobs, loaderOpts...)
	d.cropper = imaging.NewCropper(blobs,
		imaging.WithDecoder(d.loader),
		imaging.WithSurfaceFactory(imaging.RasterFactory{
			MaxPixels:    cfg.Crop.MaxSurfacePixels,
			MaxDimension: cfg.Crop.MaxDimension,
		}),
		imaging.WithLogger(logger.Named("crop")),
	)

	var app *firebaseapp.App
	if cfg.UsesFirebase() {
		var err error
		app, err = firebase.NewApp(ctx, firebase.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.CredentialsFile,
			StorageBucket:   cfg.Firebase.StorageBucket,
		})
		if err != nil {
			return nil, err
		}
	}

	store, err := profileStore(ctx, cfg, app, logger, d)
	if err != nil {
		d.Close()
		return nil, err
	}

	uploads, err := blobStore(ctx, cfg, app)
	if err != nil {
		d.Close()
		return nil, err
	}

	svcOpts := []profile.Option{
		profile.AllowUnverified(cfg.Profile.AllowUnverified),
		profile.WithLogger(logger.Named("profile")),
	}
	if app != nil {
		verifier, err := firebase.NewVerifier(ctx, app)
		if err != nil {
			d.Close()
			return nil, err
		}
		svcOpts = append(svcOpts, profile.WithVerifier(verifier))
	}

	d.profiles = profile.NewService(d.cropper, store, uploads, svcOpts...)
	logger.Info("backends ready",
		zap.String("profiles", cfg.Profile.Backend),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("redis", cfg.Redis.Addr != ""),
	)
	return d, nil
}

func profileStore(ctx context.Context, cfg *config.Config, app *firebaseapp.App, logger *zap.Logger, d *deps) (profile.Store, error) {
	var store profile.Store
	switch cfg.Profile.Backend {
	case "firestore":
		fs, err := firebase.NewProfileStore(ctx, app)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, fs.Close)
		store = fs
	default:
		store = profile.NewMemoryStore()
	}

	if cfg.Redis.Addr == "" {
		return store, nil
	}
	rdb, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, rdb.Close)
	return cache.NewProfileStore(rdb, store, cfg.Redis.TTL, logger.Named("cache")), nil
}

func blobStore(ctx context.Context, cfg *config.Config, app *firebaseapp.App) (profile.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "firebase":
		return firebase.NewBucket(ctx, app, cfg.Firebase.StorageBucket)
	case "cloudinary":
		return storage.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	case "local":
		return storage.NewLocalStore(cfg.Storage.LocalPath, cfg.Storage.LocalBaseURL)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
