/*
Package minizip reads and writes ZIP archives (PKZIP APPNOTE 6.3.x),
including ZIP64 extensions, the store/deflate/bzip2/LZMA compression
methods, and zipcrypto/WinZip-AES encrypted entries.

Archive is a stateful cursor over one underlying stream: ModeRead catalogs
an existing archive's central directory for entry-by-entry reading,
ModeWrite builds a new archive from scratch, and ModeAppend adds entries
after an existing archive's entries without touching their bytes; the old
central directory and EOCD are overwritten and rewritten at Close.

See: https://www.pkware.com/appnote, https://www.winzip.com/win/en/aes_info.html

This package does not support disk spanning.
*/
package minizip
