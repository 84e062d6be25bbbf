package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shouni/go-autopost/internal/pipeline"
)

var previewOutput string

// previewCmd は保存済みの記事を HTML に変換して確認するためのコマンドなのだ。
var previewCmd = &cobra.Command{
	Use:   "preview <post.md>",
	Short: "保存済みの記事を HTML でプレビューするのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return pipeline.ExecutePreview(cmd.Context(), args[0], previewOutput)
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "HTML の出力先なのだ（省略時は標準出力）。")
}
