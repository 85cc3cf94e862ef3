// Package elastic is an object-document mapper for search documents: it
// translates between schemaless, ordered JSON-like documents and typed Go
// structs, materializes raw search responses into typed hit collections, and
// rewrites criteria queries from domain property names to document field
// names.
//
// # Mapping — struct tags and documents
//
//	type Person struct {
//	    ID        string    `es:"_doc_id,id"`
//	    LastName  string    `es:"last_name"`
//	    BirthDate time.Time `es:"birth_date"`
//	    Address   Address   `es:"address"`
//	}
//
//	conv, _ := elastic.NewConverter()
//	doc, _ := conv.MapObject(person)
//	back, _ := elastic.MapDocument[Person](conv, doc)
//
// # Search results
//
//	hits, _ := elastic.ReadHits[Person](conv, response)
//	for _, hit := range hits.Hits {
//	    fmt.Println(hit.Score, hit.Content.LastName)
//	}
//
// # Query rewriting
//
//	q := elastic.NewCriteriaQuery(elastic.NewCriteria("address.city").Is("Berlin"))
//	_ = conv.UpdateQuery(q, Person{}) // address.city -> mapped field path
//
// Metadata is built once per type and cached on the converter's Registry;
// converters and mapping rules must be registered before a type's first use.
package elastic
