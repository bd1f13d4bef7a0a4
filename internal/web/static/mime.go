package static

import (
	"path"
	"strings"
)

// mimeTypes 同时也是“静态资源扩展名”集合：只有表里的扩展名走静态文件分支。
var mimeTypes = map[string]string{
	// 文档
	"html":  "text/html",
	"htm":   "text/html",
	"xhtml": "application/xhtml+xml",
	"xml":   "application/xml",

	// 样式
	"css":  "text/css",
	"scss": "text/x-scss",
	"sass": "text/x-sass",
	"less": "text/x-less",

	// 脚本
	"js":  "application/javascript",
	"mjs": "application/javascript",
	"jsx": "text/jsx",
	"ts":  "application/typescript",
	"tsx": "text/tsx",

	// 图片
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"ico":  "image/x-icon",
	"cur":  "image/x-icon",
	"avif": "image/avif",

	// 字体
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"eot":   "application/vnd.ms-fontobject",

	// 音频
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
	"aac":  "audio/aac",
	"flac": "audio/flac",

	// 视频
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"wmv":  "video/x-ms-wmv",
	"flv":  "video/x-flv",
	"mkv":  "video/x-matroska",

	// 办公文档
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"txt":  "text/plain",
	"rtf":  "application/rtf",
	"odt":  "application/vnd.oasis.opendocument.text",
	"ods":  "application/vnd.oasis.opendocument.spreadsheet",
	"odp":  "application/vnd.oasis.opendocument.presentation",

	// 压缩包
	"zip": "application/zip",
	"rar": "application/vnd.rar",
	"7z":  "application/x-7z-compressed",
	"tar": "application/x-tar",
	"gz":  "application/gzip",
	"bz2": "application/x-bzip2",

	// 数据
	"json": "application/json",
	"csv":  "text/csv",
	"yaml": "application/x-yaml",
	"yml":  "application/x-yaml",
	"toml": "application/toml",

	"manifest":    "text/cache-manifest",
	"webmanifest": "application/manifest+json",
	"map":         "application/json",
	"htaccess":    "text/plain",

	"swf":    "application/x-shockwave-flash",
	"eps":    "application/postscript",
	"ai":     "application/postscript",
	"psd":    "image/vnd.adobe.photoshop",
	"sketch": "application/x-sketch",
}

// Ext 返回小写、不带点的扩展名。
func Ext(p string) string {
	e := path.Ext(p)
	if e == "" {
		return ""
	}
	return strings.ToLower(e[1:])
}

// IsStatic 判断路径是否指向静态资源（按扩展名，大小写不敏感）。
func IsStatic(p string) bool {
	_, ok := mimeTypes[Ext(p)]
	return ok
}

// MimeByExt 未登记时返回空串。
func MimeByExt(ext string) string {
	return mimeTypes[strings.ToLower(ext)]
}

// textual 类型补 charset。
func withCharset(ct string) string {
	if strings.HasPrefix(ct, "text/") || ct == "application/javascript" || ct == "application/json" {
		return ct + "; charset=utf-8"
	}
	return ct
}
