package cache

// Rendered output is keyed by content hash plus the variant (style name, excerpt length).
var renderedCache = NewCache[string, string]()

func renderedKey(contentHash, variant string) string {
	return contentHash + ":" + variant
}

func GetRendered(contentHash, variant string) (string, bool) {
	return renderedCache.Get(renderedKey(contentHash, variant))
}

func SetRendered(contentHash, variant, out string) {
	renderedCache.Set(renderedKey(contentHash, variant), out)
}

func ClearRendered() {
	renderedCache.Clear()
}

func RenderedLen() int {
	return renderedCache.Len()
}
