package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/api"
	"github.com/wichananm65/football-storefront/internal/auth"
	"github.com/wichananm65/football-storefront/internal/cart"
	"github.com/wichananm65/football-storefront/internal/category"
	"github.com/wichananm65/football-storefront/internal/config"
	"github.com/wichananm65/football-storefront/internal/logging"
	"github.com/wichananm65/football-storefront/internal/product"
	"github.com/wichananm65/football-storefront/internal/token"
)

var (
	// Global flags
	verbose   bool
	apiURL    string
	tokenFile string
	timeout   time.Duration

	// Set up by rootCmd before any subcommand runs.
	logger *zap.Logger
	env    *cliEnv
)

// cliEnv holds the services shared by all subcommands.
type cliEnv struct {
	cfg        config.Config
	tokens     token.Store
	categories category.Repository
	products   *product.Service
	carts      *cart.Service
	auth       *auth.Service
}

func newEnv(cfg config.Config, tokens token.Store, logger *zap.Logger) *cliEnv {
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)
	carts := cart.NewService(cart.NewAPIRepository(client), logger)
	return &cliEnv{
		cfg:        cfg,
		tokens:     tokens,
		categories: category.NewAPIRepository(client),
		products:   product.NewService(product.NewAPIRepository(client), product.NewCatalog(), logger),
		carts:      carts,
		auth:       auth.NewService(client, cfg.LoginEndpoint, carts.Forget, logger),
	}
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Football storefront: browse the catalog and manage your cart",
	Long: `storefront talks to the football shop API.

Browse categories and products, log in, and manage your cart from the
terminal, or run "storefront serve" to start the web storefront.

The credential is kept in a file (STOREFRONT_TOKEN_FILE, default
~/.storefront/token) so it survives between invocations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if apiURL != "" {
			cfg.APIBaseURL = apiURL
		}
		if tokenFile != "" {
			cfg.TokenFile = tokenFile
		}
		if timeout > 0 {
			cfg.APITimeout = timeout
		}

		level := "warn"
		if verbose {
			level = "debug"
		}
		if cmd.Name() == "serve" {
			level = cfg.LogLevel
		}
		logger, err = logging.New(level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		env = newEnv(cfg, token.NewFileStore(cfg.TokenFile), logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API origin (or set STOREFRONT_API_URL)")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "Credential file (or set STOREFRONT_TOKEN_FILE)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request API timeout")

	productsCmd.Flags().IntVar(&productsCategory, "category", 0, "Only show products of this category id")
	addCmd.Flags().IntVarP(&addQuantity, "quantity", "q", 1, "Quantity to add")

	cartCmd.AddCommand(cartUpdateCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
