package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/server"
)

var (
	serverAddr   string
	serverDBPath string
	uploadDir    string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for extracting and comparing invoices.

The API provides endpoints for:
  - POST   /api/v1/extract        - Extract an uploaded document
  - GET    /api/v1/documents      - List stored extractions
  - GET    /api/v1/documents/:id  - Fetch one extraction
  - DELETE /api/v1/documents/:id  - Remove one extraction
  - POST   /api/v1/compare        - Compare two stored extractions
  - GET    /api/v1/providers      - List supplier providers
  - GET    /health                - Health check

Examples:
  # Start server on default port
  invoice-extractor serve

  # Start on custom port with LLM vision OCR
  invoice-extractor serve --address :8080 --api-key <key>

  # Start in debug mode
  invoice-extractor serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().StringVar(&serverDBPath, "db", "extractions.db", "Path to the extraction database")
	serveCmd.Flags().StringVar(&uploadDir, "upload-dir", "", "Directory for transient uploads (default: system temp)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Address:      serverAddr,
		DBPath:       serverDBPath,
		UploadDir:    uploadDir,
		OCRLanguage:  ocrLanguage,
		APIKey:       apiKey,
		LLMBaseURL:   llmBaseURL,
		LLMModel:     llmModel,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}

	srv, err := server.NewServer(config, newLogger())
	if err != nil {
		return err
	}

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		srv.Close()
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", serverAddr)
	if apiKey != "" {
		fmt.Println("LLM vision OCR enabled")
	} else {
		fmt.Println("Tesseract OCR enabled (no API key)")
	}

	return srv.Run()
}
