package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Play(page PlayPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := page.Title
		if title == "" {
			title = "Sketch Guess"
		}
		_, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>`+templ.EscapeString(title)+`</title>
    <style>
      body { font-family: system-ui, sans-serif; background: #f4f1ea; margin: 0; }
      .shell { max-width: 640px; margin: 2rem auto; display: grid; gap: 1rem; justify-items: center; }
      .board { position: relative; }
      canvas { background: #fff; border: 2px solid #222; touch-action: none; cursor: crosshair; }
      .overlay { position: absolute; inset: 0; display: none; align-items: center; justify-content: center;
        background: rgba(40, 160, 80, 0.8); color: #fff; font-size: 2rem; font-weight: 700; }
      .overlay.visible { display: flex; }
      .panel { display: grid; grid-template-columns: repeat(2, auto); gap: 0.25rem 1rem; font-size: 1.1rem; }
      .panel dt { font-weight: 600; }
      .actions { display: flex; gap: 0.5rem; }
      .status { color: #666; min-height: 1.2rem; }
    </style>
  </head>
  <body>
    <main class="shell">
      <h1>`+templ.EscapeString(title)+`</h1>
      <dl class="panel">
        <dt>Draw</dt><dd id="target">...</dd>
        <dt>Guess</dt><dd id="label">Draw...</dd>
        <dt>Confidence</dt><dd id="confidence">0%</dd>
        <dt>Score</dt><dd id="score">0</dd>
      </dl>
      <div class="board">
        <canvas id="canvas" width="`+itoa(page.Width)+`" height="`+itoa(page.Height)+`"></canvas>
        <div id="overlay" class="overlay">Correct!</div>
      </div>
      <div class="actions">
        <button id="clear">Clear</button>
        <button id="skip">Skip</button>
      </div>
      <div id="status" class="status">Loading model...</div>
    </main>

    <script>
      const strokeWidth = `+itoa(page.StrokeWidth)+`;
      const canvas = document.getElementById("canvas");
      const ctx = canvas.getContext("2d");
      const fields = {
        label: document.getElementById("label"),
        confidence: document.getElementById("confidence"),
        score: document.getElementById("score"),
        target: document.getElementById("target"),
      };
      const overlay = document.getElementById("overlay");
      const status = document.getElementById("status");
      let socket = null;
      let sessionId = null;
      let active = false;
      let connected = false;
      let drawing = false;
      let last = null;

      ctx.lineCap = "round";
      ctx.lineJoin = "round";
      ctx.lineWidth = strokeWidth;
      ctx.strokeStyle = "#000";
      ctx.fillStyle = "#000";

      function wipe() {
        ctx.save();
        ctx.fillStyle = "#fff";
        ctx.fillRect(0, 0, canvas.width, canvas.height);
        ctx.restore();
      }

      function segment(from, to) {
        if (from.x === to.x && from.y === to.y) {
          ctx.beginPath();
          ctx.arc(from.x, from.y, strokeWidth / 2, 0, Math.PI * 2);
          ctx.fill();
          return;
        }
        ctx.beginPath();
        ctx.moveTo(from.x, from.y);
        ctx.lineTo(to.x, to.y);
        ctx.stroke();
      }

      function point(event) {
        const rect = canvas.getBoundingClientRect();
        return {
          x: (event.clientX - rect.left) * canvas.width / rect.width,
          y: (event.clientY - rect.top) * canvas.height / rect.height,
        };
      }

      function send(payload) {
        if (socket && socket.readyState === WebSocket.OPEN) {
          socket.send(JSON.stringify(payload));
        }
      }

      function pointer(kind, prev, cur) {
        send({ type: "pointer", kind, prev, cur });
      }

      function canDraw() {
        return active && connected;
      }

      function resync() {
        if (!sessionId) return;
        const img = new Image();
        img.onload = () => ctx.drawImage(img, 0, 0, canvas.width, canvas.height);
        img.src = "/api/sessions/" + encodeURIComponent(sessionId) + "/canvas.png?t=" + Date.now();
      }

      function apply(snapshot) {
        active = snapshot.active;
        fields.label.textContent = snapshot.label;
        fields.confidence.textContent = snapshot.confidence;
        fields.score.textContent = snapshot.score;
        fields.target.textContent = snapshot.target_word || "...";
        overlay.classList.toggle("visible", snapshot.overlay);
        status.textContent = snapshot.model_ready ? "" : "Loading model...";
      }

      function handle(message) {
        switch (message.type) {
          case "snapshot":
            apply(message.value);
            break;
          case "label":
            fields.label.textContent = message.value;
            break;
          case "confidence":
            fields.confidence.textContent = message.value;
            break;
          case "score":
            fields.score.textContent = message.value;
            break;
          case "target_word":
            fields.target.textContent = message.value;
            status.textContent = "";
            active = true;
            wipe();
            break;
          case "overlay":
            overlay.classList.toggle("visible", message.value);
            active = !message.value;
            break;
          case "cleared":
            wipe();
            break;
          case "error":
            status.textContent = message.value;
            drawing = false;
            resync();
            break;
        }
      }

      canvas.addEventListener("pointerdown", (event) => {
        if (!canDraw()) return;
        drawing = true;
        canvas.setPointerCapture(event.pointerId);
        last = point(event);
        segment(last, last);
        pointer("down", last, last);
      });
      canvas.addEventListener("pointermove", (event) => {
        if (!drawing) return;
        if (!canDraw()) {
          drawing = false;
          return;
        }
        const cur = point(event);
        segment(last, cur);
        pointer("move", last, cur);
        last = cur;
      });
      const release = (event) => {
        if (!drawing) return;
        drawing = false;
        const cur = point(event);
        pointer("up", last, cur);
        last = null;
      };
      canvas.addEventListener("pointerup", release);
      canvas.addEventListener("pointercancel", release);

      document.getElementById("clear").addEventListener("click", () => {
        if (!connected) return;
        wipe();
        send({ type: "clear" });
      });
      document.getElementById("skip").addEventListener("click", () => send({ type: "skip" }));

      async function start() {
        wipe();
        const res = await fetch("/api/sessions", { method: "POST" });
        const data = await res.json();
        if (!res.ok) {
          status.textContent = data.error || "Failed to start a session.";
          return;
        }
        sessionId = data.session_id;
        const scheme = location.protocol === "https:" ? "wss://" : "ws://";
        socket = new WebSocket(scheme + location.host + "/ws/sessions/" + encodeURIComponent(data.session_id));
        socket.addEventListener("open", () => { connected = true; });
        socket.addEventListener("message", (event) => handle(JSON.parse(event.data)));
        socket.addEventListener("close", () => {
          connected = false;
          drawing = false;
          status.textContent = "Disconnected.";
        });
      }

      start();
    </script>
  </body>
</html>
`)
		return err
	})
}
