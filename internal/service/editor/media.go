package editor

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// imageDataURL sniffs the MIME type of data and returns it with the data URL
// encoding. ok is false when data is not an image.
func imageDataURL(data []byte) (dataURL, mimeType string, ok bool) {
	mimeType = http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", mimeType, false
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), mimeType, true
}

// altFromFilename turns "red-shirt_front.jpg" into "red shirt front".
func altFromFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	if base == "." || base == "/" {
		return ""
	}
	return strings.Join(strings.Fields(base), " ")
}

// embedURL converts a video page URL into its embeddable form. YouTube watch,
// short and youtu.be links and Vimeo links are converted; other https URLs
// are used as given. ok is false for anything that is not an http(s) URL.
func embedURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	switch host {
	case "youtube.com":
		switch {
		case segments[0] == "watch" && u.Query().Get("v") != "":
			return "https://www.youtube.com/embed/" + u.Query().Get("v"), true
		case (segments[0] == "shorts" || segments[0] == "embed") && len(segments) > 1:
			return "https://www.youtube.com/embed/" + segments[1], true
		}
	case "youtu.be":
		if segments[0] != "" {
			return "https://www.youtube.com/embed/" + segments[0], true
		}
	case "vimeo.com":
		if segments[0] != "" {
			return "https://player.vimeo.com/video/" + segments[0], true
		}
	}

	u.Scheme = "https"
	return u.String(), true
}
