package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Builder
		"Concatenating %d sources":            "%d 個のソースを連結中",
		"Manifest written to %s":              "マニフェストを %s に書き込みました",
		"Concatenated artifact at %s":         "連結済みファイル: %s",
		"Probed source %d: %d frames, %.2fs":  "ソース %d を解析: %d フレーム, %.2f 秒",
		"Failed to remove temporary file: %s": "一時ファイルの削除に失敗しました: %s",

		// Frame server
		"Opening %d decoder handles on %s (%s)": "%d 個のデコーダハンドルを %s で開いています (%s)",
		"Decoder handle %d opened":              "デコーダハンドル %d を開きました",
		"Decoder handle %d failed to open: %s":  "デコーダハンドル %d を開けませんでした: %s",
		"Dispatching %d frames in %d chunks":    "%d フレームを %d チャンクに分割して送信中",
		"Chunk %d decoded [%d, %d)":             "チャンク %d をデコードしました [%d, %d)",
		"Chunk %d failed [%d, %d): %s":          "チャンク %d が失敗しました [%d, %d): %s",
		"Frame server closed":                   "フレームサーバーを閉じました",
		"Artifact released: %s":                 "連結済みファイルを削除しました: %s",

		// Sheet
		"Resized %d thumbnails": "%d 枚のサムネイルを縮小しました",
	})
}
