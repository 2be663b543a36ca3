// Package vital reads the serial output of a medical monitor and turns it
// into display lines without knowing the payload encoding in advance.
//
// A Classifier keeps a running verdict (Ascii, Binary or Mixed) from the
// share of printable bytes seen so far. A Reassembler splits the byte stream
// on CR, LF and CRLF, bounding unterminated lines at 64 KiB. Render formats
// each line according to the verdict current when the line completed.
// Session ties these to a byte source such as SerialReader, a Linux-only
// raw serial port with timeout-bounded, killable reads.
//
// Example usage:
//
//	reader, err := vital.Open(vital.Config{Device: "/dev/ttyUSB0", BaudRate: 115200})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
//
//	session := vital.NewSession(reader,
//	    vital.WithName(reader.Name()),
//	    vital.WithSink(func(line string) { fmt.Println(line) }),
//	)
//	if err := session.Run(ctx); err != nil {
//	    log.Println("session failed:", err)
//	}
//	session.WriteReport(os.Stdout)
//
// The core types perform no I/O and are not safe for concurrent use;
// each device connection needs its own Session.
package vital
