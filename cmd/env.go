package cmd

import (
	"fmt"
	"os"

	"siteops/internal/config"
	"siteops/internal/service/env"

	"github.com/spf13/cobra"
)

// EnvCmd represents the env command
var EnvCmd = &cobra.Command{
	Use:   "env",
	Short: "環境変数の管理コマンド",
	Long: `キャッシュ無効化で使う環境変数を管理するためのコマンド群です。
ディストリビューションID(CLOUDFRONT_DISTRIBUTION_ID)やスタック名(AWS_STACK_NAME)の設定・表示・削除方法を表示します。`,
}

var envSetCmd = &cobra.Command{
	Use:   "set",
	Short: "環境変数の設定方法を表示",
	Long: `指定した環境変数を設定するためのexportコマンドを表示します。

例:
  ` + AppName + ` env set --distribution E2ABCDEF123456
  ` + AppName + ` env set --stack my-site --bucket s3://my-site-bucket/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var commands []string
		for _, v := range env.OrderedVariables() {
			if !cmd.Flags().Changed(v.ShortName) {
				continue
			}
			value, _ := cmd.Flags().GetString(v.ShortName)
			exportCmd, err := env.GetExportCommand(v.ShortName, value)
			if err != nil {
				return err
			}
			commands = append(commands, exportCmd)
		}

		if len(commands) == 0 {
			return fmt.Errorf("設定する変数を1つ以上指定してください")
		}

		fmt.Println("✅ 以下のコマンドを実行して環境変数を設定してください：")
		for _, c := range commands {
			fmt.Println(c)
		}
		return nil
	},
}

var envShowCmd = &cobra.Command{
	Use:   "show",
	Short: "環境変数の現在値を表示",
	RunE: func(cmd *cobra.Command, args []string) error {
		env.ShowAllVariables(os.Stdout, os.Getenv)

		verbose, _ := cmd.Flags().GetBool("all")
		if verbose {
			fmt.Println()
			fmt.Println(config.Usage())
		}
		return nil
	},
}

var envUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "環境変数の削除方法を表示",
	RunE: func(cmd *cobra.Command, args []string) error {
		var commands []string
		for _, v := range env.OrderedVariables() {
			if unset, _ := cmd.Flags().GetBool(v.ShortName); !unset {
				continue
			}
			unsetCmd, err := env.GetUnsetCommand(v.ShortName)
			if err != nil {
				return err
			}
			commands = append(commands, unsetCmd)
		}

		if len(commands) == 0 {
			return fmt.Errorf("削除する変数を1つ以上指定してください")
		}

		fmt.Println("✅ 以下のコマンドを実行して環境変数を削除してください：")
		for _, c := range commands {
			fmt.Println(c)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(EnvCmd)
	EnvCmd.AddCommand(envSetCmd)
	EnvCmd.AddCommand(envShowCmd)
	EnvCmd.AddCommand(envUnsetCmd)

	for _, v := range env.OrderedVariables() {
		if v.ShortName == "profile" || v.ShortName == "region" {
			// profile / region はルートの -P / -R をそのまま使う
			continue
		}
		envSetCmd.Flags().String(v.ShortName, "", "設定する"+v.Description)
		envUnsetCmd.Flags().Bool(v.ShortName, false, v.Description+"を削除")
	}

	envShowCmd.Flags().Bool("all", false, "設定可能な環境変数の一覧も表示")
}
