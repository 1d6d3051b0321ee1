package tulna

var mimeParser = map[string]string{
	"text/turtle":         "turtle",
	"text/n3":             "turtle",
	"application/ld+json": "jsonld",
}

var mimeSerializer = map[string]string{
	"text/turtle":         "turtle",
	"application/ld+json": "jsonld",
}
