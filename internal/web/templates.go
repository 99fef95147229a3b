package web

import "html/template"

const pageTitle = "Stock Analysis Chatbot Assistant"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2em auto; padding: 0 1em; color: #222; }
.msg { margin: .5em 0; padding: .5em .75em; border-radius: 6px; white-space: pre-wrap; }
.user { background: #eef3fb; }
.assistant { background: #f4f4f4; }
.function { background: #fffbe6; font-family: monospace; font-size: .9em; }
.error { background: #fdecea; color: #a61b1b; }
form { display: flex; gap: .5em; margin: 1em 0; }
input[type=text] { flex: 1; padding: .5em; }
img { max-width: 100%; border: 1px solid #ddd; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<form method="post" action="/ask">
  <label for="q">Your question:</label>
  <input type="text" id="q" name="q" autofocus autocomplete="off">
  <button type="submit">Ask</button>
</form>
{{if .Error}}<div class="msg error">{{.Error}}</div>{{end}}
{{if .ImageURL}}<img src="{{.ImageURL}}" alt="price chart">{{else if .Answer}}<div class="msg assistant">{{.Answer}}</div>{{end}}
{{if .Messages}}
<h2>Conversation</h2>
{{range .Messages}}
{{if .IsToolCall}}<div class="msg function">&#8594; {{.Call.Name}}({{printf "%s" .Call.Arguments}})</div>
{{else if eq .Role "function"}}<div class="msg function">{{.FunctionName}}: {{.Content}}</div>
{{else}}<div class="msg {{.Role}}">{{.Content}}</div>{{end}}
{{end}}
<form method="post" action="/reset"><button type="submit">Reset conversation</button></form>
{{end}}
</body>
</html>
`))
