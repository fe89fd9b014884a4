// Package archive reads and writes save archives.
//
// An archive is a tar stream of named entries wrapped by a gzip stream.
// Entries are written and read in a streaming manner, so that a reader can
// stop after the first small entry without decompressing the rest:
//
//	w, err := archive.NewWriter(file)
//	...
//	w.WriteEntry("info.json", info)
//	w.WriteEntry("save.json", body)
//	err = w.Close()
//
//	r, err := archive.NewReader(file)
//	for {
//		e, err := r.Next()
//		if err == io.EOF {
//			break
//		}
//		...
//		bs, err := r.ReadEntry()
//	}
//
// The reader reports broken content as ErrCorrupt, and failures of the
// underlying source as other errors.
package archive
