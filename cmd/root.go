package cmd

import (
	"fmt"
	u "net/url"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/redl/internal/downloader"
	"github.com/tanq16/redl/internal/utils"
)

var (
	savePath       string
	maxRedirects   int
	maxRetries     int
	timeoutSeconds int
	retryDelay     time.Duration
	showProgress   bool
	noClobber      bool
	saveErrors     bool
	proxyURL       string
	proxyUsername  string
	proxyPassword  string
	userAgent      string
	bearerToken    string
	headers        []string
	s3Profile      string
	debug          bool
)

var globalHTTPConfig utils.HTTPClientConfig

var RedlVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "redl",
	Short:   "redl downloads single files over HTTP/HTTPS with retries, redirects and idle timeouts",
	Version: RedlVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.InitLogger(debug)
		// Check if proxy URL contains auth
		if proxyURL != "" {
			parsedProxy, err := utils.ParseProxyURL(proxyURL, "", "")
			if err != nil {
				return err
			}
			if parsedProxy.User != nil && proxyUsername == "" {
				proxyUsername = parsedProxy.User.Username()
				if password, set := parsedProxy.User.Password(); set {
					proxyPassword = password
				}
			}
			parsedProxy.User = nil
			proxyURL = parsedProxy.String()
		}
		globalHTTPConfig = utils.HTTPClientConfig{
			ProxyURL:      proxyURL,
			ProxyUsername: proxyUsername,
			ProxyPassword: proxyPassword,
			UserAgent:     userAgent,
			BearerToken:   bearerToken,
			Headers:       utils.ParseHeaderArgs(headers),
		}
		log.Debug().Str("op", "cmd/root").Msgf("HTTP client configured (proxy=%t, headers=%d)", proxyURL != "", len(globalHTTPConfig.Headers))
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func baseConfig() downloader.Config {
	return downloader.Config{
		SavePath:           savePath,
		MaxRedirects:       maxRedirects,
		MaxRetries:         maxRetries,
		IdleTimeout:        time.Duration(timeoutSeconds) * time.Second,
		RetryDelay:         retryDelay,
		ShowProgress:       showProgress,
		NoClobber:          noClobber,
		SaveErrorResponses: saveErrors,
		Debug:              debug,
		HTTP:               globalHTTPConfig,
		Logger:             &log.Logger,
	}
}

func redactURL(raw string) string {
	parsed, err := u.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.RawQuery = ""
	return parsed.Redacted()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&savePath, "save-path", "d", downloader.DefaultSavePath, "Directory to save downloads into")
	rootCmd.PersistentFlags().IntVar(&maxRedirects, "max-redirects", downloader.DefaultMaxRedirects, "Maximum redirect hops")
	rootCmd.PersistentFlags().IntVarP(&maxRetries, "max-retries", "r", downloader.DefaultMaxRetries, "Maximum attempts before giving up")
	rootCmd.PersistentFlags().IntVarP(&timeoutSeconds, "timeout", "t", int(downloader.DefaultIdleTimeout/time.Second), "Idle timeout in seconds")
	rootCmd.PersistentFlags().DurationVar(&retryDelay, "retry-delay", 0, "Delay multiplied by the retry count before each retry (eg. 500ms)")
	rootCmd.PersistentFlags().BoolVar(&showProgress, "progress", false, "Show download progress")
	rootCmd.PersistentFlags().BoolVar(&noClobber, "no-clobber", false, "Pick a new name instead of overwriting an existing file")
	rootCmd.PersistentFlags().BoolVar(&saveErrors, "save-error-responses", false, "Save the body of non-2xx responses instead of failing or retrying")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS/SOCKS5 proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent")
	rootCmd.PersistentFlags().StringVar(&bearerToken, "token", "", "Bearer token sent as the Authorization header")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	rootCmd.PersistentFlags().StringVar(&s3Profile, "s3-profile", "", "AWS profile used to presign s3:// URLs")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newCleanCmd())
}
