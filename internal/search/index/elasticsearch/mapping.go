package elasticsearch

// DefaultIndexName is the default Elasticsearch index for product documents.
const DefaultIndexName = "swiftcart_products"

// indexMapping is the full mapping for the products index. The field set is
// the denormalized product projection used for ranking and filtering; the
// document store remains the source of truth for everything else.
const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "id":             { "type": "keyword" },
      "name":           { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "slug":           { "type": "keyword" },
      "sku":            { "type": "keyword" },
      "description":    { "type": "text" },
      "category":       { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "price":          { "type": "long" },
      "original_price": { "type": "long" },
      "rating":         { "type": "double" },
      "review_count":   { "type": "integer" },
      "stock":          { "type": "integer" },
      "in_stock":       { "type": "boolean" },
      "on_sale":        { "type": "boolean" },
      "featured":       { "type": "boolean" },
      "created_at":     { "type": "date" },
      "updated_at":     { "type": "date" }
    }
  }
}`
