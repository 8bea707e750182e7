package html

import "strings"

// CSRFCookieName is the double-submit cookie read by the form script and
// checked by the server middleware.
const CSRFCookieName = "logistica_csrf"

// CSRFFormScript injects a hidden _csrf field into POST forms from the CSRF
// cookie, and asks for confirmation on forms carrying data-confirm.
func CSRFFormScript() string {
	return strings.ReplaceAll(csrfScript, "{{cookie}}", CSRFCookieName)
}

const csrfScript = `<script>
(function () {
  function cookie(name) {
    var prefix = name + "=";
    var parts = document.cookie ? document.cookie.split(";") : [];
    for (var i = 0; i < parts.length; i++) {
      var c = parts[i].trim();
      if (c.indexOf(prefix) === 0) return decodeURIComponent(c.substring(prefix.length));
    }
    return "";
  }

  function wire() {
    var token = cookie("{{cookie}}");
    var forms = document.querySelectorAll("form");
    for (var i = 0; i < forms.length; i++) {
      var form = forms[i];
      if ((form.getAttribute("method") || "GET").toUpperCase() !== "POST") continue;
      if (token && !form.querySelector("input[name='_csrf']")) {
        var input = document.createElement("input");
        input.type = "hidden";
        input.name = "_csrf";
        input.value = token;
        form.appendChild(input);
      }
      var question = form.getAttribute("data-confirm");
      if (question) {
        form.addEventListener("submit", function (q) {
          return function (ev) { if (!window.confirm(q)) ev.preventDefault(); };
        }(question));
      }
    }
  }

  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", wire);
  } else {
    wire();
  }
})();
</script>`
