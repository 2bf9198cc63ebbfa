package main

// General API documentation for swaggo. Run `make swagger-gen` to regenerate.
//
// @title           inferd API
// @version         1.0
// @description     HTTP API for local LLM inference with on-demand engine loading.
//
// @contact.name   inferd maintainers
// @contact.url    https://github.com/your-org/inferd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
