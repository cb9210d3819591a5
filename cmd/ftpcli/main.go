// Command ftpcli is a thin demonstration CLI over the ftp package's Client
// Facade. It is the "outermost ergonomic façade" the base specification
// deliberately keeps out of the core library: a separate cmd/ binary that
// depends on the library, never the other way around.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wrenfield/ftpclient"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ftpcli:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ftpcli",
		Short:         "Command-line client for the ftp package",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.ftpcli.yaml)")
	cmd.PersistentFlags().String("host", "", "FTP server host")
	cmd.PersistentFlags().Int("port", 21, "FTP server port")
	cmd.PersistentFlags().String("user", "anonymous", "FTP username")
	cmd.PersistentFlags().String("password", "", "FTP password (prompted if omitted and not anonymous)")
	cmd.PersistentFlags().Duration("timeout", 10*time.Second, "operation timeout")

	_ = viper.BindPFlag("host", cmd.PersistentFlags().Lookup("host"))
	_ = viper.BindPFlag("port", cmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("user", cmd.PersistentFlags().Lookup("user"))
	_ = viper.BindPFlag("password", cmd.PersistentFlags().Lookup("password"))
	_ = viper.BindPFlag("timeout", cmd.PersistentFlags().Lookup("timeout"))
	viper.SetEnvPrefix("FTPCLI")
	viper.AutomaticEnv()

	cobra.OnInitialize(func() { initConfig() })

	cmd.AddCommand(lsCmd(), getCmd(), putCmd(), mkdirCmd(), rmCmd(), mtimeCmd(), pwdCmd(), cdCmd())
	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".ftpcli")
		}
	}
	_ = viper.ReadInConfig()
}

// connect builds a ftp.Config from viper, prompting interactively for a
// password when one isn't supplied via flag/env and the user isn't
// anonymous, then dials and logs in.
func connect() (*ftp.Client, error) {
	config := ftp.DefaultConfig()
	if host := viper.GetString("host"); host != "" {
		config.Host = host
	}
	if port := viper.GetInt("port"); port != 0 {
		config.Port = port
	}
	if user := viper.GetString("user"); user != "" {
		config.User = user
	}
	if timeout := viper.GetDuration("timeout"); timeout != 0 {
		config.Timeout = timeout
	}

	password := viper.GetString("password")
	if password == "" && config.User != "anonymous" {
		prompt := promptui.Prompt{Label: "Password", Mask: '*'}
		result, err := prompt.Run()
		if err != nil {
			return nil, fmt.Errorf("password prompt: %w", err)
		}
		password = result
	}
	if password != "" {
		config.Password = password
	}

	return ftp.Connect(config)
}

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List a remote directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Disconnect()

			files, err := client.GetFiles(path)
			if err != nil {
				return err
			}
			dirs, err := client.GetDirectories(path)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"kind", "name", "size", "modified"})
			for _, d := range dirs {
				table.Append([]string{"dir", d.Name, "-", formatModify(d.Modify)})
			}
			for _, f := range files {
				table.Append([]string{"file", f.Name, fmt.Sprintf("%d", f.Size), formatModify(f.Modify)})
			}
			table.Render()
			return nil
		},
	}
}

func formatModify(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <remote> <local>",
		Short: "Download a remote file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Disconnect()

			return client.Download(args[0], args[1], false, func(current, total int64) {
				fmt.Printf("\r%d/%d bytes", current, total)
			})
		},
	}
}

func putCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <local> <remote>",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Disconnect()

			return client.Upload(args[0], args[1], func(current, total int64) {
				fmt.Printf("\r%d/%d bytes", current, total)
			})
		},
	}
}

func mkdirCmd() *cobra.Command {
	recursive := false
	cmd := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a remote directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Disconnect()
			return client.CreateDir(args[0], recursive)
		},
	}
	cmd.Flags().BoolVarP(&recursive, "parents", "p", false, "create intermediate directories as needed")
	return cmd
}

func rmCmd() *cobra.Command {
	recursive := false
	dir := false
	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a remote file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Disconnect()

			if dir {
				return client.DeleteDirectory(args[0], recursive)
			}
			return client.DeleteFile(args[0])
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "delete directory contents recursively")
	cmd.Flags().BoolVar(&dir, "dir", false, "treat path as a directory")
	return cmd
}

func mtimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mtime <path>",
		Short: "Print a remote file's last modification time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Disconnect()

			t, err := client.GetLastModificationTime(args[0])
			if err != nil {
				return err
			}
			fmt.Println(t.Format(time.RFC3339))
			return nil
		},
	}
}

func pwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pwd",
		Short: "Print the remote working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Disconnect()

			dir, err := client.GetCurrentDirectory()
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}

func cdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cd <path>",
		Short: "Change the remote working directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Disconnect()
			return client.SetCurrentDirectory(args[0])
		},
	}
}
