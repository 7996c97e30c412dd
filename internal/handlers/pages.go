package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterStaticPages serves the developer portal and donation page.
// Pure presentation; no logic behind these routes.
func RegisterStaticPages(r *gin.Engine) {
	docs := func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(docsPage))
	}
	r.GET("/", docs)
	r.GET("/docs", docs)
	r.GET("/donate", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(donatePage))
	})
}

const docsPage = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>QRIS Relay Developer Portal</title>
<style>
  body { margin: 0; font-family: Inter, "Segoe UI", system-ui, sans-serif; background: #f5f7fb; color: #111827; line-height: 1.6; }
  header { background: #fff; border-bottom: 1px solid #e5e7eb; padding: 14px 24px; font-weight: 700; }
  main { max-width: 880px; margin: 0 auto; padding: 32px 20px; }
  h1 { font-size: 2rem; border-bottom: 1px solid #e5e7eb; padding-bottom: 14px; }
  h2 { font-size: 1.2rem; color: #2563eb; margin-bottom: 6px; }
  p { color: #6b7280; font-size: 0.95rem; }
  .card { background: #fff; border: 1px solid #e5e7eb; border-radius: 14px; padding: 28px; margin-bottom: 24px; }
  .badge { background: #2563eb; color: #fff; padding: 4px 10px; border-radius: 999px; font-size: 0.75rem; font-weight: 600; }
  code { background: #e0e7ff; color: #2563eb; padding: 3px 8px; border-radius: 6px; font-size: 0.85rem; }
  pre { background: #0f172a; color: #e5e7eb; padding: 18px 20px; border-radius: 10px; overflow-x: auto; font-size: 0.85rem; }
  .warn { margin-top: 16px; padding: 14px 16px; border-radius: 10px; background: #fff7ed; color: #92400e; border-left: 4px solid #f59e0b; font-size: 0.9rem; }
</style>
</head>
<body>
<header>QRIS Relay &bull; Developer Portal</header>
<main>
  <h1>QRIS Integration</h1>

  <div class="card">
    <h2>1. Create Payment</h2>
    <p><span class="badge">POST</span> <code>/create-payment</code></p>
    <p>Membuat QRIS baru dan menerima QR String dari sistem Pakasir.
       <code>client_webhook_url</code> opsional.</p>
    <pre>{
  "amount": 99000,
  "client_webhook_url": "https://aplikasi-anda.com/webhook"
}</pre>
  </div>

  <div class="card">
    <h2>2. Webhook Configuration</h2>
    <p>Masukkan URL <code>/webhook</code> layanan ini ke menu
       <b>Edit Proyek</b> di Dashboard Pakasir.</p>
    <div class="warn">
      Sistem akan memvalidasi status pembayaran ke Pakasir sebelum
      notifikasi diteruskan ke aplikasi Anda. Notifikasi yang diteruskan
      bersifat idempoten per <code>order_id</code>.
    </div>
  </div>

  <div class="card">
    <h2>3. Cancel Payment</h2>
    <p><span class="badge">POST</span> <code>/cancel-payment</code></p>
    <pre>{
  "order_id": "INV-1767267600000-a1b2c3d4",
  "amount": 99000
}</pre>
  </div>
</main>
</body>
</html>
`

const donatePage = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Dukung QRIS Relay</title>
<style>
  body { margin: 0; font-family: Inter, "Segoe UI", system-ui, sans-serif; background: #f5f7fb; color: #111827; text-align: center; padding: 60px 20px; }
  .card { background: #fff; border: 1px solid #e5e7eb; border-radius: 14px; padding: 40px; max-width: 480px; margin: 0 auto; }
  h1 { font-size: 1.5rem; }
  p { color: #6b7280; }
  a { color: #2563eb; font-weight: 600; text-decoration: none; }
</style>
</head>
<body>
<div class="card">
  <h1>Dukung QRIS Relay</h1>
  <p>Layanan ini gratis dan open source. Jika membantu, traktir kopi lewat
     QRIS di halaman <a href="/docs">dokumentasi</a>.</p>
</div>
</body>
</html>
`
