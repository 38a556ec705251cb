package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/raushankrgupta/resale-catalog-parser/config"
	"github.com/raushankrgupta/resale-catalog-parser/scrapers"
	"github.com/raushankrgupta/resale-catalog-parser/scrapers/base"
	"github.com/urfave/cli/v2"
)

// extract_check runs a storefront's page parser over saved product pages and
// prints what it pulled out, without touching the network or the database.
func main() {
	app := &cli.App{
		Name:      "extract_check",
		ArgsUsage: "<page.html>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "store", Value: "hm", EnvVars: []string{"STOREFRONT"}},
			&cli.StringFlag{Name: "url", Usage: "product URL the pages were saved from", Required: true},
		},
		Action: func(c *cli.Context) error {
			profiles, err := config.LoadStorefronts(os.Getenv("STOREFRONTS_FILE"))
			if err != nil {
				return err
			}
			profile, ok := profiles[c.String("store")]
			if !ok {
				return fmt.Errorf("unknown storefront %q", c.String("store"))
			}
			storefront, err := scrapers.GetStorefront(profile, base.Options{})
			if err != nil {
				return err
			}

			for _, path := range c.Args().Slice() {
				fmt.Printf("Testing file: %s\n", path)
				html, err := os.ReadFile(path)
				if err != nil {
					log.Printf("Failed to read %s: %v\n", path, err)
					continue
				}

				page, err := storefront.ParsePage(c.String("url"), string(html))
				if err != nil {
					log.Printf("Failed to parse page: %v\n", err)
					continue
				}

				b, _ := json.MarshalIndent(page, "", "  ")
				fmt.Printf("Page: %s\n", string(b))
				fmt.Println("--------------------------------------------------")
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
