package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/raushankrgupta/resale-catalog-parser/catalog"
	"github.com/raushankrgupta/resale-catalog-parser/config"
	"github.com/raushankrgupta/resale-catalog-parser/metrics"
	"github.com/raushankrgupta/resale-catalog-parser/pipeline"
	"github.com/raushankrgupta/resale-catalog-parser/pricing"
	"github.com/raushankrgupta/resale-catalog-parser/reference"
	"github.com/raushankrgupta/resale-catalog-parser/scrapers"
	"github.com/raushankrgupta/resale-catalog-parser/scrapers/base"
	"github.com/raushankrgupta/resale-catalog-parser/utils"
	"github.com/urfave/cli/v2"
)

func main() {
	config.LoadConfig()

	app := &cli.App{
		Name:      "catalog-parser",
		Usage:     "scrape a storefront category into the catalog (mode 0) or refresh stock of stored products (mode 1)",
		ArgsUsage: "<mode> [category]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store",
				Usage:   "storefront profile: hm or cos",
				EnvVars: []string{"STOREFRONT"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("[Main] %v", err)
	}
}

func run(c *cli.Context) error {
	mode, err := parseMode(c.Args().Get(0))
	if err != nil {
		return err
	}
	categoryID := c.Args().Get(1)
	if mode == pipeline.ModeCreate && categoryID == "" {
		return fmt.Errorf("create mode needs a category id")
	}

	profiles, err := config.LoadStorefronts(config.StorefrontsFile)
	if err != nil {
		return err
	}
	profile, ok := profiles[c.String("store")]
	if !ok {
		return fmt.Errorf("unknown storefront %q (use -store or STOREFRONT)", c.String("store"))
	}

	loadOpts := reference.UpdateRun
	if mode == pipeline.ModeCreate {
		loadOpts = reference.CreateRun
	}
	tables, err := reference.Load(profile.TablesDir, loadOpts)
	if err != nil {
		return err
	}

	runMetrics := metrics.NewRun(profile.Name, mode)
	opts := base.Options{
		Retries:    config.RequestRetries,
		RetryDelay: config.RetryDelay,
		Timeout:    config.RequestTimeout,
		RPS:        config.RequestRPS,
		Observe:    runMetrics.RecordRequest,
	}
	renderers := scrapers.Renderers(config.FetchFallbacks, profile.Headers, config.ChromeDriverPath)
	storefront, err := scrapers.GetStorefront(profile, opts, renderers...)
	if err != nil {
		return err
	}

	engine, err := pricing.NewEngine(storefront.Formula(), tables.Prices)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := utils.ConnectMongo(config.MongoURI); err != nil {
		return err
	}
	defer utils.DisconnectMongo(ctx)

	runner := &pipeline.Runner{
		Storefront: storefront,
		Tables:     tables,
		Engine:     engine,
		Metrics:    runMetrics,
	}

	var summary *pipeline.Summary
	if mode == pipeline.ModeCreate {
		runner.Store = utils.NewCatalogStore(utils.GetCollection(config.MongoDatabase, config.StagingCollection))

		staging, err := utils.NewStaging(config.StagingDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := staging.Cleanup(); err != nil {
				log.Printf("[Main] Failed to remove staging dir %s: %v", staging.Dir, err)
			}
		}()

		uploader, err := newUploader(ctx, profile.Name)
		if err != nil {
			return err
		}
		translator := newTranslator(ctx)
		if closer, ok := translator.(interface{ Close() error }); ok {
			defer closer.Close()
		}

		runner.Normalizer = &catalog.Normalizer{
			Brand:      storefront.Brand(),
			Tables:     tables,
			Translator: translator,
			Images:     &pipeline.ImagePublisher{Source: storefront, Staging: staging, Uploader: uploader},
			Materials:  storefront.MaterialMode(),
			Hex:        storefront.HexMode(),
		}
		summary, err = runner.Create(ctx, categoryID)
		if err != nil {
			return err
		}
	} else {
		runner.Store = utils.NewCatalogStore(utils.GetCollection(config.MongoDatabase, config.ProductionCollection))
		summary, err = runner.Update(ctx)
		if err != nil {
			return err
		}
	}

	lines := summary.Lines()
	fmt.Println(strings.Join(lines, "\n"))

	runMetrics.Finish(true)
	if err := runMetrics.Push(config.PushgatewayURL); err != nil {
		log.Printf("[Main] %v", err)
	}
	subject := fmt.Sprintf("%s %s run finished", profile.Name, mode)
	if err := utils.SendReport(config.SendGridAPIKey, config.ReportEmail, subject, lines); err != nil {
		log.Printf("[Main] Report not sent: %v", err)
	}
	return nil
}

func parseMode(arg string) (string, error) {
	switch arg {
	case "0":
		return pipeline.ModeCreate, nil
	case "1":
		return pipeline.ModeUpdate, nil
	}
	return "", fmt.Errorf("mode must be 0 (create) or 1 (update), got %q", arg)
}

func newUploader(ctx context.Context, subject string) (utils.Uploader, error) {
	switch config.ImageUploader {
	case "http":
		return utils.NewHTTPUploader(config.UploadURL, config.UploadJWTSecret, subject, config.RequestRetries, config.RetryDelay), nil
	case "s3":
		return utils.NewS3Uploader(ctx, config.AWSRegion, config.AWSBucketName)
	case "none":
		log.Println("[Main] Image upload disabled")
		return utils.NoopUploader{}, nil
	}
	return nil, fmt.Errorf("unknown IMAGE_UPLOADER %q", config.ImageUploader)
}

func newTranslator(ctx context.Context) catalog.Translator {
	if config.GeminiAPIKey == "" {
		log.Println("[Main] GEMINI_API_KEY not set, text is stored untranslated")
		return utils.PassthroughTranslator{}
	}
	t, err := utils.NewGeminiTranslator(ctx, config.GeminiAPIKey, config.GeminiModel, config.TranslateTarget)
	if err != nil {
		log.Printf("[Main] %v, text is stored untranslated", err)
		return utils.PassthroughTranslator{}
	}
	return t
}
