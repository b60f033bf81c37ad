package main

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// App
		"Serve frames from many videos as one": "複数の動画を1本としてフレームを提供",
		"framestitch concatenates source videos without re-encoding and decodes frames from the joined stream with a pool of parallel decoders.": "framestitch は再エンコードせずにソース動画を連結し、並列デコーダのプールで連結済みストリームからフレームをデコードします。",
		"framestitch version %s":        "framestitch バージョン %s",
		"Interrupted, shutting down...": "中断されました。終了しています...",

		// Categories
		"Frame server": "フレームサーバー",
		"Output":       "出力",
		"Logging":      "ログ",

		// Common flags
		"YAML configuration file": "YAML 設定ファイル",
		"Path to ffmpeg executable (falls back to FFMPEG_PATH, then PATH)": "ffmpeg 実行ファイルのパス (未指定時は FFMPEG_PATH、次に PATH)",
		"Log level (debug, info, warn, error)":                              "ログレベル (debug, info, warn, error)",
		"Suppress all log output":                                           "すべてのログ出力を抑制",
		"Number of parallel decoders":                                       "並列デコーダの数",
		"Decode device (cpu, auto, cuda, cuda:N, vaapi, qsv, videotoolbox)": "デコードデバイス (cpu, auto, cuda, cuda:N, vaapi, qsv, videotoolbox)",
		"Directory for the manifest and the joined video":                   "マニフェストと連結済み動画を置くディレクトリ",

		// extract
		"Extract frames from the joined sources as images": "連結したソースからフレームを画像として抽出",
		"Global frame indices, e.g. 0,5,10-15":             "グローバルフレーム番号 (例: 0,5,10-15)",
		"Sample time as SOURCE:SECONDS (repeatable)":       "サンプル時刻を SOURCE:SECONDS で指定 (複数指定可)",
		"Output directory":                                 "出力ディレクトリ",
		"Image format (png, jpg, bmp, tiff)":               "画像形式 (png, jpg, bmp, tiff)",
		"Frames requested per decode batch":                "1回のデコードで要求するフレーム数",
		"Decode frames without writing images":             "画像を書き出さずにデコードのみ実行",
		"Extracting":                                       "抽出中",
		"Extracting %d frames from %d sources":             "%d フレームを %d 個のソースから抽出中",
		"Saved %d frames to %s":                            "%d フレームを %s に保存しました",

		// sheet
		"Render a contact sheet of frames from the joined sources": "連結したソースのフレームからコンタクトシートを作成",
		"Take every Nth frame when --frames is not given":          "--frames 未指定時に N フレームごとに取得",
		"Output image path":                                        "出力画像のパス",
		"Number of columns":                                        "列数",
		"Thumbnail width in pixels":                                "サムネイルの幅 (ピクセル)",
		"Contact sheet saved to %s":                                "コンタクトシートを %s に保存しました",

		// probe
		"Show video track information and global frame offsets": "動画トラック情報とグローバルフレーム位置を表示",
		"Source":       "ソース",
		"Codec":        "コーデック",
		"Size":         "サイズ",
		"Frames":       "フレーム数",
		"Duration":     "長さ",
		"Global range": "グローバル範囲",
		"Total":        "合計",

		// synth
		"Generate a numbered test clip":      "番号入りのテスト動画を生成",
		"Output MP4 file path (required)":    "出力 MP4 ファイルのパス (必須)",
		"Number of frames":                   "フレーム数",
		"Frame width (even)":                 "フレーム幅 (偶数)",
		"Frame height (even)":                "フレーム高さ (偶数)",
		"Frame rate":                         "フレームレート",
		"Number printed on the first frame":  "最初のフレームに表示する番号",
		"Accent color (hex, e.g., #4ade80)":  "アクセント色 (16進数, 例: #4ade80)",
		"Synthesized %d frames to %s":        "%d フレームを %s に生成しました",
	})
}
