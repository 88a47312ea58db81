package parser

const decreeText = `SURAT KEPUTUSAN DIREKSI PT ANGKASA
NOMOR : SKEP/12/III/2021

TENTANG
PEDOMAN REKRUTMEN PEGAWAI

Menimbang : a. bahwa diperlukan pedoman rekrutmen;
Mengingat : 1. Undang-Undang Nomor 13 Tahun 2003;
MEMUTUSKAN
Menetapkan : KEPUTUSAN DIREKSI TENTANG PEDOMAN REKRUTMEN PEGAWAI

===== PAGE 2 =====

BAB I
KETENTUAN UMUM

Pasal 1
Pegawai adalah pekerja tetap perusahaan.

BAB II
REKRUTMEN

Pasal 2
(1) Rekrutmen dilakukan secara terbuka.
(2) Seleksi dilakukan oleh panitia.

Ditetapkan di : Jakarta
Pada tanggal : 12 Maret 2021
DIREKSI PT ANGKASA
DIREKTUR UTAMA

BUDI SANTOSO

Kepada Yth.
1. Para Direktur
2. Kepala Divisi
`

const circularText = `SURAT EDARAN
NOMOR : SE/05/2022
TENTANG
PENGGUNAAN ALAT PELINDUNG DIRI

Kepada seluruh pegawai.

1. Latar Belakang
Keselamatan kerja merupakan prioritas perusahaan.
2. Maksud dan Tujuan
a. meningkatkan kepatuhan;
b. menurunkan angka kecelakaan.
3.
Ruang lingkup meliputi seluruh unit kerja.
4. Ketentuan
Seluruh pegawai wajib menggunakan APD di area kerja.

Dikeluarkan di : Jakarta
Pada tanggal : 1 Juni 2022
DIREKTUR SDM

ANI WIJAYA

Tembusan :
1. Direktur Utama
2. Arsip
`

const workInstructionText = `INSTRUKSI KERJA
No. Dokumen : I-001-OPS
PENGOPERASIAN GENSET
Revisi : 00
Tanggal Terbit : 5 Januari 2023

1. TUJUAN
Sebagai pedoman pengoperasian genset.
2. RUANG LINGKUP
Berlaku untuk unit pembangkit.
3. URAIAN INSTRUKSI
1) Periksa bahan bakar.
2) Nyalakan panel kontrol.
a. tekan tombol start.

LEMBAR PENGESAHAN
Disusun oleh : Staf Teknik
Disetujui oleh : Manajer Operasi
`

const procedureText = `PROSEDUR PENGADAAN BARANG
No : P-02-LOG
Tanggal Berlaku : 3 Februari 2023

1. TUJUAN
Mengatur proses pengadaan barang.
2. PROSES
- Pengguna mengajukan permintaan.
- Bagian pengadaan memverifikasi.
`

const unstructuredText = `Catatan rapat koordinasi
Peserta hadir lengkap dan rapat dimulai pukul sembilan.`

const mixedCaseProcedureText = `PROSEDUR
Pengadaan Barang
Nomor : P-01-ADM

1. Tujuan
Menjamin pengadaan barang sesuai kebutuhan unit.
2. Ruang Lingkup
Berlaku untuk:
1. Kantor pusat
2. Kantor cabang
3. Uraian Prosedur
a. Unit kerja mengajukan permintaan barang.
b. Bagian pengadaan memverifikasi permintaan.

LEMBAR PENGESAHAN
Disetujui oleh : Direktur Umum
`
