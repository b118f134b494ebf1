package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"siteops/cmd"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var anchorLinkPattern = regexp.MustCompile(`\((\w+)#([\w-]+)\.md\)`)

func main() {
	docsDir := flag.String("out", "./docs", "出力先ディレクトリ")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := os.RemoveAll(*docsDir); err != nil {
		log.Fatal().Err(err).Msg("docsディレクトリの削除に失敗しました")
	}
	if err := os.MkdirAll(*docsDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("docsディレクトリの作成に失敗しました")
	}

	// ルートコマンドはdocs/README.mdとして生成
	root, err := renderCommand(cmd.RootCmd)
	if err != nil {
		log.Fatal().Err(err).Msg("ルートコマンドのドキュメント生成に失敗しました")
	}
	if err := os.WriteFile(filepath.Join(*docsDir, "README.md"), []byte(root), 0644); err != nil {
		log.Fatal().Err(err).Msg("README.mdの書き込みに失敗しました")
	}

	groups := groupCommands(cmd.RootCmd)
	for name, commands := range groups {
		filename := filepath.Join(*docsDir, name+".md")
		if err := writeGroupMarkdown(name, commands, filename); err != nil {
			log.Error().Err(err).Str("group", name).Msg("ドキュメント生成に失敗しました")
		}
	}

	fmt.Printf("✅ Documentation generated in %s (%d files)\n", *docsDir, len(groups)+1)
}

// groupCommands はトップレベルのサブコマンドごとに子コマンドをまとめる
func groupCommands(root *cobra.Command) map[string][]*cobra.Command {
	groups := make(map[string][]*cobra.Command)
	for _, sub := range root.Commands() {
		if !visible(sub) {
			continue
		}
		groups[sub.Name()] = append(groups[sub.Name()], sub)
		for _, child := range sub.Commands() {
			if visible(child) {
				groups[sub.Name()] = append(groups[sub.Name()], child)
			}
		}
	}
	return groups
}

func visible(c *cobra.Command) bool {
	return c.IsAvailableCommand() && !c.IsAdditionalHelpTopicCommand()
}

// renderCommand は1コマンド分のMarkdownを生成する
func renderCommand(c *cobra.Command) (string, error) {
	buf := new(bytes.Buffer)
	if err := doc.GenMarkdownCustom(c, buf, linkHandler); err != nil {
		return "", fmt.Errorf("%s のドキュメント生成に失敗: %w", c.CommandPath(), err)
	}

	content := buf.String()
	if hideInheritedFlags(c) {
		content = removeInheritedFlagsSection(content)
	}
	content = strings.ReplaceAll(content, "("+cmd.AppName+".md)", "(README.md)")
	return anchorLinkPattern.ReplaceAllString(content, "($1.md#$2)"), nil
}

// writeGroupMarkdown はグループ内の全コマンドを1ファイルにまとめる
func writeGroupMarkdown(name string, commands []*cobra.Command, filename string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Commands\n\n", name)
	fmt.Fprintf(&b, "This document describes all `%s %s` commands.\n\n", cmd.AppName, name)
	b.WriteString("## Table of Contents\n\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "- [%s](#%s)\n", c.CommandPath(), strings.ReplaceAll(c.CommandPath(), " ", "-"))
	}
	b.WriteString("\n---\n\n")

	for _, c := range commands {
		content, err := renderCommand(c)
		if err != nil {
			return err
		}
		b.WriteString(content)
		b.WriteString("\n---\n\n")
	}
	return os.WriteFile(filename, []byte(b.String()), 0644)
}

// hideInheritedFlags はAWS接続フラグを使わないコマンドか判定する
func hideInheritedFlags(c *cobra.Command) bool {
	for p := c; p != nil; p = p.Parent() {
		if p.Name() == "env" || p.Name() == "version" {
			return true
		}
	}
	return false
}

// linkHandler は siteops_cf_invalidate -> cf#siteops-cf-invalidate のようにリンクを変換する
func linkHandler(name string) string {
	base := strings.TrimSuffix(name, ".md")
	if base == cmd.AppName {
		return "README"
	}

	parts := strings.Split(base, "_")
	if len(parts) < 2 || parts[0] != cmd.AppName {
		return name
	}
	if len(parts) > 2 {
		return parts[1] + "#" + strings.ReplaceAll(base, "_", "-")
	}
	return parts[1]
}

// removeInheritedFlagsSection は継承フラグセクションを削除
func removeInheritedFlagsSection(content string) string {
	var result []string
	skipping := false
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "### Options inherited from parent commands") {
			skipping = true
			continue
		}
		if skipping && strings.HasPrefix(line, "#") {
			skipping = false
		}
		if !skipping {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
