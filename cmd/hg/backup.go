package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hg-go/internal/app"

	"github.com/spf13/cobra"
)

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Encrypted backup of your data",
}

var backupInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create backup keys and check the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "BackupInit", func(ctx context.Context, a *app.HGApp) error {
			if err := a.ValidateVault(ctx); err != nil {
				return fmt.Errorf("vault not usable: %w", err)
			}
			pass, err := readPassphrase("Backup passphrase: ")
			if err != nil {
				return err
			}
			confirm, err := readPassphrase("Repeat passphrase: ")
			if err != nil {
				return err
			}
			if pass != confirm {
				return errors.New("passphrases do not match")
			}
			if err := a.Service().SetupBackup(pass); err != nil {
				return err
			}
			fmt.Println("Backup keys created. Keep your passphrase safe: it is needed to restore.")
			return nil
		})
	},
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload an encrypted snapshot of your data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "BackupPush", func(ctx context.Context, a *app.HGApp) error {
			version, err := a.Service().PushBackup(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Backup stored (version %d, %s)\n", version, time.Unix(version, 0).Format(time.DateTime))
			return nil
		})
	},
}

var backupPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace your data with the stored snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "BackupPull", func(ctx context.Context, a *app.HGApp) error {
			pass, err := readPassphrase("Backup passphrase: ")
			if err != nil {
				return err
			}
			snap, err := a.Service().PullBackup(ctx, pass)
			if err != nil {
				return err
			}
			fmt.Printf("Restored backup from %s: %d food, %d exercise, %d water entries\n",
				snap.ExportedAt.Local().Format(time.DateTime), len(snap.Foods), len(snap.Exercises), len(snap.Water))
			return nil
		})
	},
}

func init() {
	backupCmd.AddCommand(backupInitCmd)
	backupCmd.AddCommand(backupPushCmd)
	backupCmd.AddCommand(backupPullCmd)
	rootCmd.AddCommand(backupCmd)
}
