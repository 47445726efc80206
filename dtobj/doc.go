// Package dtobj implements the compound objects DataTank builds from several
// records of a container.
//
// Every kind satisfies dtbin.Object, so it can be passed to File.Write or
// Series.Add, and has a Read function that rebuilds it from a container.
// The records of an object share its name as a prefix:
//
//	Kind                        Records
//	Mask                        <n> (N×2 int32 intervals), <n>_dim
//	2D Mesh                     <n>, <n>_loc, <n>_bbox2D, <n>_dom (mask)
//	2D Bitmap                   <n> (grid), <n>_Red ... <n>_Gray[16]
//	2D Path                     <n> (packed loops), <n>_bbox2D
//	2D Path Values              <n> (path), <n>_V
//	2D Point Collection         <n> (N×2), <n>_bbox2D
//	2D Point Value Collection   <n> (points), <n>_V
//	2D Structured Grid          <n>, <n>_X, <n>_Y, <n>_bbox2D, <n>_dom
//	3D Structured Grid          <n>, <n>_X, <n>_Y, <n>_Z, <n>_bbox3D, <n>_dom
//	2D/3D Structured Mesh       <n> (grid or grid name), <n>_V
//	2D/3D Structured Vector Field  <n> (grid), <n>_VX, <n>_VY[, <n>_VZ]
//	2D Triangular Grid          <n> (M×3 int32), <n>_pts, <n>_bbox2D
//	2D Triangular Mesh          <n> (grid or grid name), <n>_V
//	2D Triangular Vector Field  <n> (grid or grid name), <n>_VX, <n>_VY
//
// Point, point value, vector and region kinds are single double records.
//
// Materialize looks up the type tag of an exposed variable and calls the
// registered reader for it.
package dtobj
