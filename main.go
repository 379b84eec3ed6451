package main

import "github.com/gracecast/gracecast-api/cmd"

// @title           GraceCast API
// @version         1.0.0
// @description     AI podcast generation API for church content: multi-host script drafting, speech synthesis, and audio assembly
// @contact.name    API Support
// @contact.url     https://github.com/gracecast/gracecast-api
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Bearer token identifying the requesting user
func main() {
	cmd.Execute()
}
