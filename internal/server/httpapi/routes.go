package httpapi

func (s *HTTPServer) routes() {
	s.app.Use(s.requestLogger)

	api := s.app.Group("/api")
	api.Get("/health", s.health)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", s.register)
	authRoutes.Post("/login", s.login)
	authRoutes.Post("/refresh", s.refresh)

	// Devices are not users: they register themselves and fetch with a key.
	api.Post("/devices", s.registerDevice)
	api.Delete("/devices/:token", s.unregisterDevice)
	api.Get("/fetch/:id", s.fetchProcedure)

	procedures := api.Group("/procedures", s.authJWT)
	procedures.Get("/", s.listProcedures)
	procedures.Post("/", s.createProcedure)
	procedures.Get("/:id", s.getProcedure)
	procedures.Patch("/:id", s.updateProcedure)
	procedures.Delete("/:id", s.deleteProcedure)
	procedures.Get("/:id/versions", s.procedureVersions)
	procedures.Get("/:id/validate", s.validateProcedure)
	procedures.Post("/:id/revise", s.reviseProcedure)
	procedures.Post("/:id/deepcopy", s.deepCopyProcedure)
	procedures.Post("/:id/publish", s.publishProcedure)
	procedures.Get("/:id/export", s.exportProcedure)
	procedures.Get("/:id/graph", s.procedureGraph)

	pages := api.Group("/pages", s.authJWT)
	pages.Post("/", s.createPage)
	pages.Patch("/:id", s.updatePage)
	pages.Delete("/:id", s.deletePage)

	elements := api.Group("/elements", s.authJWT)
	elements.Post("/", s.createElement)
	elements.Patch("/:id", s.updateElement)
	elements.Delete("/:id", s.deleteElement)

	showIfs := api.Group("/showifs", s.authJWT)
	showIfs.Post("/", s.createShowIf)
	showIfs.Patch("/:id", s.updateShowIf)
	showIfs.Delete("/:id", s.deleteShowIf)

	concepts := api.Group("/concepts", s.authJWT)
	concepts.Get("/", s.listConcepts)
	concepts.Post("/", s.createConcept)
	concepts.Get("/:id", s.getConcept)
	concepts.Patch("/:id", s.updateConcept)
	concepts.Delete("/:id", s.deleteConcept)
	concepts.Get("/:id/abstractelements", s.conceptAbstractElements)

	abstract := api.Group("/abstractelements", s.authJWT)
	abstract.Post("/", s.createAbstractElement)
	abstract.Patch("/:id", s.updateAbstractElement)
	abstract.Delete("/:id", s.deleteAbstractElement)

	media := api.Group("/media", s.authJWT)
	media.Post("/upload", s.uploadURL)
	media.Get("/download", s.downloadURL)
}
