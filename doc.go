// Package pakgo provides an immutable, file-backed object store for Go.
//
// A pak artifact is built exactly once: a Builder serializes a closed set of
// typed records into a single binary file, attaching secondary-index entries
// per record along the way. Readers then open the artifact (mmap-backed on
// local disk, fetched whole from object storage) and retrieve records either
// by direct Pointer or by evaluating boolean predicate queries against the
// sorted indices. There is no mutation after finalize, which is what makes
// readers lock-free and safe for arbitrary concurrent use.
//
// # Quick Start
//
// Define a record type and expose its index attributes:
//
//	type Person struct {
//	    Name string `json:"name"`
//	    Age  int64  `json:"age"`
//	}
//
//	func (p Person) PakIndices() []pakgo.Attribute {
//	    return []pakgo.Attribute{
//	        {Key: "name", Value: value.String(p.Name)},
//	        {Key: "age", Value: value.Int(p.Age)},
//	    }
//	}
//
// Build an artifact:
//
//	b := pakgo.NewBuilder()
//	b.Pak(Person{Name: "John", Age: 30})
//	b.Pak(Person{Name: "Jane", Age: 25})
//	r, err := b.FinalizeToFile("people.pak")
//	if err != nil {
//	    panic(err)
//	}
//	defer r.Close()
//
// Query it:
//
//	q := query.Equals("name", value.String("John")).
//	    Or(query.GreaterThan("age", value.Int(28)))
//
//	people, err := pakgo.QueryAs[Person](ctx, r, q)
//
// # Record Encoding
//
// Records that implement Serializable/Deserializable control their own byte
// encoding. Everything else goes through the configured codec (go-json by
// default, see WithCodec). Every record's Pointer carries a type tag derived
// from the record's Go type, and Get verifies the tag before decoding, so a
// pointer can never silently decode as the wrong type.
//
// # Cloud Storage
//
// Artifacts are plain blobs. The blobstore subpackages read and write them
// against local disk, memory, S3 and MinIO, with optional zstd/lz4
// compression and a disk cache for remote stores:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("paks/"))
//	r, err := pakgo.OpenStore(ctx, store, "people.pak")
//
// # Determinism
//
// Identical build call sequences produce byte-identical artifacts: records
// are laid out in insertion order, index entries are stable-sorted by encoded
// value with ties broken by record offset, and the directory is written in
// ascending key order. Artifact diffing and content-addressed storage work as
// expected.
package pakgo
