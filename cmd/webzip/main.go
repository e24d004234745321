package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-shiori/webzip"
	"github.com/go-shiori/webzip/matrixbot"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	// Prepare cmd
	cmd := &cobra.Command{
		Use:   "webzip",
		Short: "Archive web pages through a chain of archiving services",
	}

	cmd.AddCommand(archiveCmd(), botCmd())

	// Execute
	err := cmd.Execute()
	if err != nil {
		logrus.Fatalln(err)
	}
}

func archiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive [url1] [url2] ... [urlN]",
		Short: "Archive web pages and save the results into a directory",
		RunE:  archiveHandler,
	}

	cmd.Flags().StringP("input", "i", "", "path to file which contains URLs")
	cmd.Flags().StringP("output", "o", ".", "directory to save archival results")
	cmd.Flags().StringP("user-agent", "u", "", "set custom user agent")
	cmd.Flags().BoolP("gzip", "z", false, "gzip archival results")
	cmd.Flags().BoolP("quiet", "q", false, "disable logging")
	cmd.Flags().Bool("verbose", false, "more verbose logging")
	cmd.Flags().Bool("insecure", false, "skip X.509 (TLS) certificate verification")
	cmd.Flags().IntP("timeout", "t", 0, "maximum time (in second) for each archiving method, 0 to use defaults")
	cmd.Flags().String("pdf-api-key", "", "API key of the PDF conversion service (env "+envPDFAPIKey+")")
	cmd.Flags().String("screenshot-token", "", "token of the screenshot service (env "+envScreenshotToken+")")

	return cmd
}

func botCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the archive command as a Matrix bot",
		Args:  cobra.NoArgs,
		RunE:  botHandler,
	}

	cmd.Flags().StringP("config", "c", "config.yaml", "path to YAML config file")

	return cmd
}

func archiveHandler(cmd *cobra.Command, args []string) error {
	// Parse flags
	inputPath, _ := cmd.Flags().GetString("input")
	outputDir, _ := cmd.Flags().GetString("output")
	userAgent, _ := cmd.Flags().GetString("user-agent")
	useGzip, _ := cmd.Flags().GetBool("gzip")
	disableLog, _ := cmd.Flags().GetBool("quiet")
	useVerboseLog, _ := cmd.Flags().GetBool("verbose")
	skipTLSVerification, _ := cmd.Flags().GetBool("insecure")
	timeout, _ := cmd.Flags().GetInt("timeout")
	pdfAPIKey, _ := cmd.Flags().GetString("pdf-api-key")
	screenshotToken, _ := cmd.Flags().GetString("screenshot-token")

	// Create list of URLs
	urls := append([]string{}, args...)
	if inputPath != "" {
		newURLs, err := parseInputFile(inputPath)
		if err != nil {
			return err
		}
		urls = append(urls, newURLs...)
	}

	urls = dedupe(urls)
	if len(urls) == 0 {
		return errors.New("no url to process")
	}

	// Make sure output dir exists
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	// Create archiver config
	cfg := archiverConfig{
		UserAgent: userAgent,
		Insecure:  skipTLSVerification,
		Verbose:   !disableLog && useVerboseLog,
	}
	cfg.applyEnv()

	if pdfAPIKey != "" {
		cfg.PDFAPIKey = pdfAPIKey
	}

	if screenshotToken != "" {
		cfg.ScreenshotToken = screenshotToken
	}

	if timeout > 0 {
		d := time.Duration(timeout) * time.Second
		cfg.SnapshotTimeout = d
		cfg.PDFTimeout = d
		cfg.HTMLTimeout = d
		cfg.ScreenshotTimeout = d
		cfg.DownloadTimeout = d
	}

	arc := cfg.newArchiver()
	arc.EnableLog = !disableLog

	messenger := &dirMessenger{
		dir:     outputDir,
		useGzip: useGzip,
		out:     os.Stdout,
	}
	if disableLog {
		messenger.out = nil
	}

	// Process each url
	ctx := context.Background()
	for i, url := range urls {
		msg := webzip.Message{
			ChatID:    "cli",
			MessageID: "url-" + strconv.Itoa(i+1),
			Text:      arc.Command + " " + url,
		}

		if err := arc.HandleCommand(ctx, messenger, msg); err != nil {
			return err
		}
	}

	return nil
}

func botHandler(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	level, _ := cfg.logLevel()
	logrus.SetLevel(level)

	arc := cfg.Archiver.newArchiver()
	bot, err := matrixbot.New(cfg.botConfig(), arc)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bot.Run(ctx)
}
