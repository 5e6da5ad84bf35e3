package httpapi

import "net/http"

const indexHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>AI Doctor with Vision, Text, and Voice</title></head>
<body>
<h1>AI Doctor with Vision, Text, and Voice</h1>
<form method="post" action="/consult" enctype="multipart/form-data">
<p><label>Voice Input (Optional) <input type="file" name="audio" accept="audio/*" capture></label></p>
<p><label>Text Input (Optional) <input type="text" name="text" size="60"></label></p>
<p><label>Upload Medical Image (Optional) <input type="file" name="image" accept="image/*"></label></p>
<p><button type="submit">Submit</button></p>
</form>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}
