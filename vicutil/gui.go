/*
Copyright © 2024 the vicparam authors.
This file is part of vicparam.

vicparam is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

vicparam is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with vicparam.  If not, see <http://www.gnu.org/licenses/>.
*/

package vicutil

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/ctessum/gobra"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

// guiAddress is the address of the configuration web page.
const guiAddress = "localhost:7171"

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Configure and run commands from a web browser.",
	Long: `gui starts a local web server with a form for every command and its
configuration options, and opens it in the default web browser.`,
	Run: func(cmd *cobra.Command, args []string) {
		StartWebServer()
	},
	DisableAutoGenTag: true,
}

// configHandler loads the configuration file given in the form field
// "config" and responds with the resulting option values.
func configHandler(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	configFile := r.Form.Get("config")
	Root.PersistentFlags().Set("config", configFile)
	if err := setConfig(); err != nil {
		http.Error(w, err.Error(), http.StatusNoContent)
		return
	}
	config := make(map[string]interface{})
	for _, option := range options {
		config[option.name] = Cfg.Get(option.name)
	}
	e := json.NewEncoder(w)
	if err := e.Encode(config); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// StartWebServer starts the web server.
func StartWebServer() {
	setConfig() // Ignore any errors for now.

	http.HandleFunc("/setConfig", configHandler)

	Log.Info("loading front-end")

	const tmpl = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>vicparam</title>
	<style>
		html, body {padding: 0; margin: 2% 0; font-family: sans-serif;}
		.container { max-width: 700px; margin: 0 auto; padding: 10px; }
		div[id^="gobra-"] blockquote { border-left: 3px solid #bbb; margin: .3em; color: #333; padding-left: 5px; font-size: 75%; }
		div[id^="gobra-"] code { font-weight: bold; }
		div[id^="gobra-"] input { font-family: monospace; margin-left: .2em; width: 50%; outline:none; }
		.red-border{ border: 1px solid #c35; }
		.green-border{ border: 1px solid #3c5; }
	</style>
</head>
<body>
<div class="container">
	<h1>vicparam</h1>
	<p>Build VIC parameter and forcing files.</p>
	<div>
		{{.}}
	</div>
</div>
<script>
let allFlags = [...document.querySelectorAll('[data-name]')];
let configInput = allFlags.filter(x => x.dataset.name == "config")[0].children[0];
configInput.addEventListener("input", e => {
	fetch("http://` + guiAddress + `/setConfig?config="+configInput.value)
		.then(res => {
			if (res.status !== 200) {
				configInput.classList.add("red-border");
				return;
			}
			res.json().then(data => {
				configInput.classList.remove("red-border");
				for (let key in data)
					for (let f of allFlags)
						if (f.dataset.name == key) {
							let input = f.children[0];
							let v = JSON.stringify(data[key]).replace(/^"+|"+$/g,'');
							if (input.value != v) {
								input.value = v;
								input.classList.add("green-border");
							}
						}
			})
		})
		.catch(err => console.log("Error fetching /setConfig", err))
})
</script>
</body>
</html>`

	for _, cmd := range Root.Commands() {
		cmd.SilenceUsage = true
	}

	output := template.Must(template.New("").Parse(tmpl))
	server := gobra.Server{Root: Root, ServerAddress: guiAddress, AllowCORS: false, HTML: output}
	Log.WithField("address", guiAddress).Info("server starting")
	if err := open.Run("http://" + guiAddress); err != nil {
		fmt.Printf("Please visit http://%s\n", guiAddress)
	}
	server.Start()
}
