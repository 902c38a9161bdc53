package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/phylo-explorer/phylotree"
	"github.com/spf13/cobra"
)

func getenv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return value
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}

	// Set configuration for the phylotree package
	phylotree.Config.OpenAIAPIKey = getenv("OPENAI_API_KEY")

	rootCmd := &cobra.Command{
		Use:   "phylotree",
		Short: "News similarity tree builder CLI",
	}

	// Add all commands from the phylotree package
	rootCmd.AddCommand(phylotree.LoadArticlesCmd)
	rootCmd.AddCommand(phylotree.EmbedArticlesCmd)
	rootCmd.AddCommand(phylotree.BuildTreeCmd)
	rootCmd.AddCommand(phylotree.GenerateReportCmd)
	rootCmd.AddCommand(phylotree.PublishSiteCmd)
	rootCmd.AddCommand(phylotree.ServeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cleanCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: load-articles -> embed-articles -> build-tree -> generate-report",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Running full pipeline...")
		phylotree.LoadArticlesCmd.Run(cmd, args)
		phylotree.EmbedArticlesCmd.Run(cmd, args)
		phylotree.BuildTreeCmd.Run(cmd, args)
		phylotree.GenerateReportCmd.Run(cmd, args)
		log.Println("Pipeline complete.")
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean sampled articles, trees, and reports",
	Run: func(cmd *cobra.Command, args []string) {
		dirs := []string{"articles", "trees"}
		for _, dir := range dirs {
			files, err := os.ReadDir(dir)
			if err != nil {
				log.Printf("Failed to read %s: %v", dir, err)
				continue
			}
			for _, file := range files {
				if file.IsDir() {
					continue
				}
				err := os.Remove(filepath.Join(dir, file.Name()))
				if err != nil {
					log.Printf("Failed to remove %s: %v", file.Name(), err)
				}
			}
		}

		// Remove generated reports, keep the embedding cache
		for _, name := range []string{"report.md", "report.html"} {
			if err := os.Remove(name); err != nil {
				if !os.IsNotExist(err) {
					log.Printf("Failed to remove %s: %v", name, err)
				}
			}
		}

		log.Println("Cleaned articles, trees directories and reports.")
	},
}
