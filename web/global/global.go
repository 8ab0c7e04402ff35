// Package global exposes the running web server to packages that can not
// import it directly.
package global

var webServer WebServer

// WebServer is the part of the web server other packages may reach.
type WebServer interface {
	GetWSHub() any
}

func SetWebServer(s WebServer) {
	webServer = s
}

func GetWebServer() WebServer {
	return webServer
}
