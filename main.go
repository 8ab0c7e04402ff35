// The allblack command runs the restaurant ordering panel and offers a few
// maintenance subcommands.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/allblack/allblack-panel/config"
	"github.com/allblack/allblack-panel/database"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web"
	"github.com/allblack/allblack-panel/web/global"
	"github.com/allblack/allblack-panel/web/service"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func initLogger() {
	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatalf("Unknown log level: %v", config.GetLogLevel())
	}
}

func openDB() error {
	return database.Open(config.GetDatabaseConfig())
}

func runWebServer() {
	log.Printf("Starting %v %v", config.GetName(), config.GetVersion())
	initLogger()
	defer logger.CloseLogger()

	if err := openDB(); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer database.CloseDB()

	server := web.NewServer()
	global.SetWebServer(server)
	if err := server.Start(); err != nil {
		log.Fatalf("Error starting web server: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP signal. Restarting server...")
			if err := server.Stop(); err != nil {
				logger.Debug("Error stopping web server:", err)
			}
			server = web.NewServer()
			global.SetWebServer(server)
			if err := server.Start(); err != nil {
				log.Fatalf("Error restarting web server: %v", err)
			}
			log.Println("Web server restarted successfully.")
		default:
			logger.Info("Shutting down server...")
			if err := server.Stop(); err != nil {
				logger.Debug("Error stopping web server:", err)
			}
			log.Println("Shutting down server...")
			return
		}
	}
}

func migrateDb() {
	if err := openDB(); err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()
	fmt.Println("Start migrating database...")
	if err := database.Migrate(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Migration done!")
}

func resetSetting() {
	if err := openDB(); err != nil {
		fmt.Println("Failed to initialize database:", err)
		return
	}
	defer database.CloseDB()

	settingService := service.SettingService{}
	if err := settingService.ResetSettings(); err != nil {
		fmt.Println("Failed to reset settings:", err)
	} else {
		fmt.Println("Settings successfully reset.")
	}
}

func showSetting() {
	settingService := service.SettingService{}
	port, err := settingService.GetPort()
	if err != nil {
		fmt.Println("get current port failed, error info:", err)
	}
	basePath, err := settingService.GetBasePath()
	if err != nil {
		fmt.Println("get webBasePath failed, error info:", err)
	}
	userService := service.UserService{}
	admin, err := userService.GetFirstAdmin()
	if err != nil {
		fmt.Println("get current admin failed, error info:", err)
		return
	}
	fmt.Println("current panel settings as follows:")
	fmt.Println("admin:", admin.Username)
	fmt.Println("port:", port)
	fmt.Println("webBasePath:", basePath)
}

func updateSetting(port int, username string, password string) {
	settingService := service.SettingService{}
	if port > 0 {
		if err := settingService.SetPort(port); err != nil {
			fmt.Println("Failed to set port:", err)
		} else {
			fmt.Printf("Port set successfully: %v\n", port)
		}
	}
	if username != "" || password != "" {
		userService := service.UserService{}
		if err := userService.UpdateFirstAdmin(username, password); err != nil {
			fmt.Println("Failed to update admin credentials:", err)
		} else {
			fmt.Println("Admin credentials updated successfully")
		}
	}
}

func purgeOrders(confirm bool) {
	if err := openDB(); err != nil {
		fmt.Println("Failed to initialize database:", err)
		return
	}
	defer database.CloseDB()

	orderService := service.OrderService{}
	count, err := orderService.PurgeAll(confirm)
	if err != nil {
		fmt.Println("Failed to purge orders:", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %d orders\n", count)
}

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Println("Failed to load .env:", err)
	}

	rootCmd := &cobra.Command{
		Use:   "allblack",
		Short: "Restaurant ordering panel",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	settingCmd := &cobra.Command{
		Use:   "setting",
		Short: "Show, update or reset panel settings",
		Run: func(cmd *cobra.Command, args []string) {
			reset, _ := cmd.Flags().GetBool("reset")
			if reset {
				resetSetting()
				return
			}
			if err := openDB(); err != nil {
				fmt.Println("Failed to initialize database:", err)
				return
			}
			defer database.CloseDB()

			port, _ := cmd.Flags().GetInt("port")
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			updateSetting(port, username, password)

			if show, _ := cmd.Flags().GetBool("show"); show {
				showSetting()
			}
		},
	}
	settingCmd.Flags().Bool("reset", false, "Reset all settings")
	settingCmd.Flags().Bool("show", false, "Display current settings")
	settingCmd.Flags().Int("port", 0, "Set panel port number")
	settingCmd.Flags().String("username", "", "Set admin username")
	settingCmd.Flags().String("password", "", "Set admin password")

	purgeCmd := &cobra.Command{
		Use:   "purge-orders",
		Short: "Delete every order and its history",
		Run: func(cmd *cobra.Command, args []string) {
			yes, _ := cmd.Flags().GetBool("yes")
			purgeOrders(yes)
		},
	}
	purgeCmd.Flags().Bool("yes", false, "Confirm the deletion")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetVersion())
		},
	}

	rootCmd.AddCommand(runCmd, migrateCmd, settingCmd, purgeCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
