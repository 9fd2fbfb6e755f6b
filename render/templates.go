// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package render

const votePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
table.grid { border-collapse: collapse; }
table.grid th, table.grid td { padding: .35rem .6rem; text-align: center; }
table.grid td.label { text-align: left; }
.closed { color: #a33; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="description">{{.DescriptionHTML}}</div>
{{if .Closed}}<p class="closed">This poll is closed.</p>{{end}}
<form id="ballot" data-slug="{{.Slug}}" data-poll-type="{{.PollType}}">
{{- with .Grid}}
<table class="grid">
<thead><tr><th></th>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr><td class="label">{{.Label}}</td>
{{- range .Cells}}<td><input type="radio" id="{{.ID}}" name="{{.Name}}" value="{{.Value}}"{{if .Checked}} checked{{end}}></td>{{end}}
</tr>
{{- end}}
</tbody>
</table>
{{- end}}
{{- with .List}}
<ul class="list">
{{- range .Items}}
<li><input type="{{.Type}}" id="{{.ID}}" name="{{.Name}}" value="{{.Value}}"{{if .Checked}} checked{{end}}> <label for="{{.ID}}">{{.Label}}</label></li>
{{- end}}
</ul>
{{- end}}
<output id="form-preview"></output>
</form>
{{if not .Closed}}
<script>
(async () => {
  const form = document.getElementById("ballot");
  const preview = document.getElementById("form-preview");
  const res = await fetch("/polls/" + form.dataset.slug + "/sessions", { method: "POST" });
  if (!res.ok) {
    const body = await res.json().catch(() => ({}));
    preview.textContent = body.message || body.error || res.statusText || "Could not start a session";
    return;
  }
  const snap = await res.json();
  const proto = location.protocol === "https:" ? "wss://" : "ws://";
  const ws = new WebSocket(proto + location.host + "/sessions/" + snap.session_id + "/ws");

  const apply = (snap) => {
    if (snap.cells) {
      snap.cells.forEach((row, y) => row.forEach((on, x) => {
        document.getElementById(y + "_" + x).checked = on;
      }));
    }
    if (snap.selected !== undefined || !snap.cells) {
      const selected = new Set(snap.selected || []);
      form.querySelectorAll("ul.list input").forEach((el, i) => { el.checked = selected.has(i); });
    }
    preview.textContent = snap.form;
  };
  apply(snap);

  ws.onmessage = (ev) => {
    const msg = JSON.parse(ev.data);
    if (msg.type === "snapshot") apply(msg.snapshot);
  };
  form.addEventListener("click", (ev) => {
    const el = ev.target;
    if (el.tagName !== "INPUT") return;
    if (el.type === "radio" && form.querySelector("table.grid")) {
      const [row, column] = el.id.split("_").map(Number);
      ws.send(JSON.stringify({ type: "select", row, column }));
    } else {
      ws.send(JSON.stringify({ type: "select", row: Number(el.id.slice(3)), column: 0 }));
    }
  });
})();
</script>
{{end}}
</body>
</html>
`

const adminPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Polls</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
th, td { padding: .3rem .8rem; text-align: left; border-bottom: 1px solid #ddd; }
</style>
</head>
<body>
<h1>Polls</h1>
<p>{{comma (len .Polls)}} polls</p>
<table>
<thead><tr><th>Title</th><th>Type</th><th>Status</th><th>Options</th><th>Slug</th><th>Created</th></tr></thead>
<tbody>
{{- range .Polls}}
<tr>
<td>{{.Title}}</td>
<td>{{.PollType}}</td>
<td>{{.Status}}</td>
<td>{{.OptionCount}}</td>
<td>{{with .ShareSlug}}<a href="/vote/{{.}}">{{.}}</a>{{else}}-{{end}}</td>
<td title="{{.CreatedAt.UTC.Format "2006-01-02 15:04:05"}}">{{ago .CreatedAt $.Now}}</td>
</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`
