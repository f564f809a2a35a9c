// @title           WisdomBase API
// @version         1.0.0
// @description     Role-based authentication and document management API.
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the access token.
package main

func main() {
	Execute()
}
